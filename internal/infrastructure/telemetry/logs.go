package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap/zapcore"
)

// LogCore returns a zap core that forwards entries to the OTLP log
// pipeline, filtered by level (usually the base logger's core). It is a
// no-op core when logs are disabled. Tee it next to the base core with
// logger.WithCore.
func (p *Providers) LogCore(level zapcore.LevelEnabler) zapcore.Core {
	if p == nil || p.logs == nil {
		return zapcore.NewNopCore()
	}
	return &leveledCore{
		Core:  otelzap.NewCore(TracerName, otelzap.WithLoggerProvider(p.logs)),
		level: level,
	}
}

// leveledCore applies a minimum level, which the otelzap core lacks
type leveledCore struct {
	zapcore.Core
	level zapcore.LevelEnabler
}

func (c *leveledCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *leveledCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return &leveledCore{Core: c.Core.With(fields), level: c.level}
}
