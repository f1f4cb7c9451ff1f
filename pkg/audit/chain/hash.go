package chain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// GenesisHash is the previous hash of the very first entry: 64 zeros.
var GenesisHash = strings.Repeat("0", 64)

// ComputeHash returns the hex-encoded SHA-256 of auditID‖timestamp‖previousHash.
// The result is always 64 lowercase hex characters.
func ComputeHash(auditID, timestamp, previousHash string) string {
	h := sha256.New()
	h.Write([]byte(auditID))
	h.Write([]byte(timestamp))
	h.Write([]byte(previousHash))
	return hex.EncodeToString(h.Sum(nil))
}

// HashContent returns the hex-encoded SHA-256 of content.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// DataIntegrity returns the digest of the canonical JSON serialization of
// data. encoding/json sorts map keys, so equal payloads hash equally
// regardless of insertion order.
func DataIntegrity(data any) (string, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return "", err
	}
	return HashContent(canonical), nil
}

// Canonicalize serializes data in the form it has after being written to
// and read back from a log file. Invalid UTF-8 is replaced on the way out,
// so a digest computed before the write matches one computed at verify
// time. Numbers keep their literal text.
func Canonicalize(data any) ([]byte, error) {
	first, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(first))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	return json.Marshal(decoded)
}

// IsHash reports whether s is a 64-character lowercase hex string.
func IsHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}
