package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/certpipe/core/logger"
)

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, slog.Attr{}, logger.Error(nil))

	attr := logger.Error(errors.New("boom"))
	assert.Equal(t, "error", attr.Key)
}

func TestDomainAttr(t *testing.T) {
	assert.Equal(t, slog.Attr{}, logger.Domain(""))
	assert.Equal(t, "example.com", logger.Domain("example.com").Value.String())
}

func TestNewWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("app", "certpipe")),
	)

	log.Info("hello", logger.Component("pipeline"))

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "app=certpipe")
	assert.Contains(t, out, "component=pipeline")
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

	log.Info("dropped")
	log.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
