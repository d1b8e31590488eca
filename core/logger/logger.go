package logger

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// RayIDKey is the fiber locals key holding the request's ray id.
	RayIDKey = "ray_id"
	// ActorHeader carries the caller identity of override requests.
	ActorHeader = "X-Actor"
)

// New creates a zap logger from cfg. Unknown levels fall back to info.
func New(cfg *Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if lvl, err := zapcore.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
		level = lvl
	}

	config := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "console" {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	} else {
		config.Encoding = "json"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "message"
	if cfg.Service != "" {
		config.InitialFields = map[string]any{"service": cfg.Service}
	}

	return config.Build()
}

// WithRayID scopes l to one request: its ray id and, when sent, the caller identity.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	var fields []zap.Field
	if rid, ok := c.Locals(RayIDKey).(string); ok && rid != "" {
		fields = append(fields, zap.String("ray_id", rid))
	}
	if actor := c.Get(ActorHeader); actor != "" {
		fields = append(fields, zap.String("actor", actor))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
