// Package health provides the health check endpoints served next to the
// metrics endpoint by long-running auditlog commands.
//
// # Endpoints
//
//   - /health: Liveness probe - the process is running
//   - /ready: Readiness probe - every registered check passes
//   - /version: Build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("log_dir", health.DirectoryCheck(fs, cfg.LogDir))
//	checker.RegisterCheck("writes", health.WriteErrorCheck(func() int64 {
//	    return l.Stats().WriteErrors
//	}))
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, version, commit, buildDate)
//
// # Readiness
//
// Checks run concurrently, each bounded by the checker's timeout. One
// failing check turns the status into "degraded" and the readiness
// endpoint answers 503.
package health
