package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) Bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

func TestLogCore_TeesAtBaseLevel(t *testing.T) {
	exporter := &recordingExporter{}
	p := &Providers{
		logger: zap.NewNop(),
		logs:   sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	base, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(zapcore.NewTee(base, p.LogCore(base)))

	log.Debug("loading debt")
	log.Info("collection submitted", zap.Int64("cliente_id", 7))
	log.With(zap.String("draft_id", "d-1")).Warn("discarded stale debt response")

	assert.Equal(t, 2, recorded.Len())
	assert.Equal(t, []string{"collection submitted", "discarded stale debt response"}, exporter.Bodies())
}

func TestLogCore_DisabledIsNop(t *testing.T) {
	p, err := Setup(context.Background(), Config{ServiceName: "test"}, zap.NewNop())
	require.NoError(t, err)

	core := p.LogCore(zapcore.DebugLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}
