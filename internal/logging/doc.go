// Package logging provides structured logging for briefd built on Zap.
//
// Loggers are explicitly constructed and injected; there is no package-level
// global. Log methods take a context.Context and automatically attach
// correlation fields (trace ID, span ID, request ID) extracted from it.
//
// Usage:
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info(ctx, "context assembled",
//	    zap.String("deliverable", req.Name),
//	    zap.Int("score", pkg.Confidence.Score),
//	)
//
// For tests, NewTestLogger returns a logger backed by zaptest/observer with
// assertion helpers.
package logging
