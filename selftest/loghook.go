package selftest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/ipif/hooking"
)

// LogHook writes self-test progress to a structured logger. Passing stages
// are logged at debug level, failing stages at warn level and results at
// info or error level.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a LogHook. A nil logger means slog.Default().
func NewLogHook(logger *slog.Logger) *LogHook {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogHook{logger: logger}
}

// Func logs the hook item.
func (h *LogHook) Func(ctx hooking.HookCtx) {
	switch item := ctx.Item.(type) {
	case Start:
		h.logger.Debug("self-test started",
			"run", item.RunID, "width", item.Width)
	case Step:
		level := slog.LevelDebug
		if !item.Passed {
			level = slog.LevelWarn
		}

		h.logger.Log(context.Background(), level, "self-test stage",
			"run", item.RunID,
			"stage", item.Stage.String(),
			"mask", hex(item.Mask),
			"wrote", hex(item.Wrote),
			"read", hex(item.Read),
			"passed", item.Passed)
	case Result:
		if item.Status.OK() {
			h.logger.Info("self-test passed",
				"run", item.RunID, "width", item.Width, "mask", hex(item.Mask))
			return
		}

		h.logger.Error("self-test failed",
			"run", item.RunID,
			"width", item.Width,
			"status", item.Status.String(),
			"stage", item.FailedStage.String())
	}
}

func hex(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
