package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"", "dev", "prod", "Production", "quiet"} {
		log, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, log.SugaredLogger)
	}

	_, err := New("verbose")
	require.Error(t, err)
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.With("lesson", "01J").Warn("render warning", "type", "render_failed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "render warning", entry.Message)
	assert.Equal(t, map[string]interface{}{"lesson": "01J", "type": "render_failed"}, entry.ContextMap())
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Info("ignored", "k", 1)
	log.Sync()
}
