package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelAudit sits between info and warn and is rendered as "AUDIT".
const (
	LevelAudit    = slog.Level(2)
	LevelSecurity = slog.LevelWarn
)

var base atomic.Pointer[slog.Logger]

func init() {
	base.Store(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{ReplaceAttr: levelNames})))
}

// Setup installs the process logger. With file set, output is tee'd to a rotating file.
// The returned closer flushes the file sink.
func Setup(service, level, file string) io.Closer {
	var w io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if file != "" {
		rot := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		w = io.MultiWriter(os.Stdout, rot)
		closer = rot
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: levelNames})
	l := slog.New(h).With("service", service)
	base.Store(l)
	slog.SetDefault(l)
	return closer
}

// SetOutput redirects the action logger, mainly for tests. restore puts the previous one back.
func SetOutput(w io.Writer) (restore func()) {
	prev := base.Swap(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{ReplaceAttr: levelNames})))
	return func() { base.Store(prev) }
}

func Base() *slog.Logger { return base.Load() }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelAudit {
		a.Value = slog.StringValue("AUDIT")
	}
	return a
}

func write(level slog.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := Base()
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	attrs := make([]any, 0, 10)
	attrs = append(attrs, "action", action)
	if c != nil {
		ctx = c.UserContext()
		attrs = append(attrs,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, "req_id", rid)
		}
		if uid, ok := c.Locals("uid").(string); ok && uid != "" {
			attrs = append(attrs, "user_id", uid)
		}
	}
	if err != nil {
		attrs = append(attrs, "err", err.Error())
	}
	if len(fields) > 0 {
		attrs = append(attrs, "fields", fields)
	}
	l.Log(ctx, level, action, attrs...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { write(slog.LevelInfo, c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelAudit, c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelSecurity, c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(slog.LevelError, c, action, err, fields)
}
