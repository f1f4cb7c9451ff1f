// Package ledger implements the audit ledger: the single object that turns
// review pipeline events into hash-chained, compliance-annotated records
// and appends them to the daily log files.
//
// A process creates one Ledger and passes it to every collaborator:
//
//	l, err := ledger.New(ledger.FromConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	result := l.LogEvent(ctx, "ai_review_completed",
//	    audit.Fields{"files": 3},
//	    audit.LevelInfo,
//	    audit.Fields{"user": "alice", "repository": "org/repo"},
//	)
//
// LogEvent never returns an error; failures are reported in the
// AppendResult. The same ledger runs retention cleanup, integrity
// verification and compliance reporting over its directory.
//
// # Chain continuity
//
// By default each ledger starts a fresh chain from the genesis hash while
// the files keep every earlier record. With ResumeFromDisk the first new
// entry links to the newest persisted record and continues its index.
package ledger
