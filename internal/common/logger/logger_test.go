package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"taskType": "fetch-listings"}).
		WithError(errors.New("backend down"))

	log.Info("search completed", map[string]interface{}{"count": 3})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "fetch-listings", ctx["taskType"])
		assert.Equal(t, "backend down", ctx["error"])
		assert.EqualValues(t, 3, ctx["count"])
	}
}

func TestMapToZapFields_Empty(t *testing.T) {
	assert.Nil(t, mapToZapFields(nil))
	assert.Len(t, mapToZapFields(map[string]interface{}{"a": 1, "b": errors.New("x")}), 2)
}

func TestNewStructured_Formats(t *testing.T) {
	assert.NotNil(t, NewStructured("debug", "json"))
	assert.NotNil(t, NewStructured("info", "console"))
	NewNoOpLogger().Info("nothing", nil)
}
