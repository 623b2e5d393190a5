package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NopByDefault(t *testing.T) {
	// Must not panic before Initialize.
	Debug("before init", "k", "v")
	Info("before init")
}

func TestLogger_CapturesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core).Sugar())
	defer SetLogger(nil)

	Debug("parsing message", "contentType", "application/xml")
	Warn("unresolved reference", "ref", "Codelist=ECB:CL_FREQ(1.0)")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "parsing message", entries[0].Message)
	assert.Equal(t, "application/xml", entries[0].ContextMap()["contentType"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}

func TestInitialize(t *testing.T) {
	require.NoError(t, Initialize(true, false))
	require.NoError(t, Initialize(false, true))
	SetLogger(nil)
}
