// Package logger builds the service's zap loggers.
//
// Level and format come from LOG_LEVEL and LOG_FORMAT. JSON output carries ISO8601
// timestamps and a "service" field; console output is meant for the CLI.
//
// WithRayID scopes a logger to one HTTP request. It adds the ray id set by the
// rayid middleware and the X-Actor caller identity, so a run or override can be
// traced from the request line to the audit entry.
//
//	l := logger.WithRayID(log, c)
//	l.Error("Run failed", zap.String("period", period), zap.Error(err))
package logger
