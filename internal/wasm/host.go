package wasm

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// HostFunctionsImpl implements the functions add-ons import from the host.
type HostFunctionsImpl struct {
	logger *zap.Logger
}

// NewHostFunctions creates the host import set.
func NewHostFunctions(logger *zap.Logger) *HostFunctionsImpl {
	return &HostFunctionsImpl{
		logger: logger.With(zap.String("component", "wasm-host")),
	}
}

// guestLevels maps log_message levels; unknown levels log at info.
var guestLevels = []zapcore.Level{
	zapcore.DebugLevel,
	zapcore.InfoLevel,
	zapcore.WarnLevel,
	zapcore.ErrorLevel,
}

func (h *HostFunctionsImpl) export(builder wazero.HostModuleBuilder) wazero.HostModuleBuilder {
	return builder.NewFunctionBuilder().
		WithFunc(h.logMessage).
		WithParameterNames("level", "ptr", "length").
		Export("log_message")
}

// logMessage implements log_message(level, ptr, length).
func (h *HostFunctionsImpl) logMessage(_ context.Context, mod api.Module, level, ptr, length uint32) {
	msg, ok := mod.Memory().Read(ptr, length)
	if !ok {
		h.logger.Error("Guest log message out of bounds",
			zap.String("module", mod.Name()),
			zap.Uint32("ptr", ptr),
			zap.Uint32("length", length),
		)
		return
	}

	lvl := zapcore.InfoLevel
	if int(level) < len(guestLevels) {
		lvl = guestLevels[level]
	}
	if ce := h.logger.Check(lvl, string(msg)); ce != nil {
		ce.Write(zap.String("module", mod.Name()))
	}
}
