// Package logifaceadapter bridges a github.com/joeycumines/logiface
// generic Logger into the telemetry.Logger interface, so the Gateway can
// be pointed at any backend logiface has (or gains) an adapter for
// (zerolog, logrus, slog, stumpy) without this module importing those
// adapters directly.
package logifaceadapter

import (
	"github.com/joeycumines/go-ocall-gateway/telemetry"
	"github.com/joeycumines/logiface"
)

// Adapter implements telemetry.Logger by forwarding every Entry through a
// *logiface.Logger[logiface.Event].
type Adapter struct {
	logger *logiface.Logger[logiface.Event]
}

// New wraps logger. A nil logger yields an Adapter that reports every
// level disabled, matching telemetry.NoOpLogger's behaviour.
func New(logger *logiface.Logger[logiface.Event]) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) IsEnabled(level telemetry.Level) bool {
	if a.logger == nil {
		return false
	}
	return a.logger.Level().Enabled() && a.logger.Level() >= toLogifaceLevel(level)
}

func (a *Adapter) Log(e telemetry.Entry) {
	if a.logger == nil {
		return
	}

	b := a.logger.Build(toLogifaceLevel(e.Level))
	if b == nil {
		return
	}
	if e.Op != "" {
		b = b.Str("op", e.Op)
	}
	for k, v := range e.Fields {
		b = b.Interface(k, v)
	}
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}

// toLogifaceLevel maps telemetry's four-level scheme onto logiface's
// syslog-derived scale. telemetry has no emergency/alert/critical/notice
// tiers, so those collapse onto the nearest telemetry-meaningful level.
func toLogifaceLevel(level telemetry.Level) logiface.Level {
	switch level {
	case telemetry.LevelDebug:
		return logiface.LevelDebug
	case telemetry.LevelInfo:
		return logiface.LevelInformational
	case telemetry.LevelWarn:
		return logiface.LevelWarning
	case telemetry.LevelError:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}
