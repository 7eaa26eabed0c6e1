package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Info("member registered", "member_id", 7)

	output := buf.String()
	assert.Contains(t, output, "member registered")
	assert.Contains(t, output, "member_id")
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Error("balance debit failed")

	assert.Contains(t, buf.String(), "balance debit failed")
}

func TestDebug(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Debug("resolving qr code")

	assert.Contains(t, buf.String(), "resolving qr code")
}

func TestInfof(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Infof("server starting on port %s", "8080")

	assert.Contains(t, buf.String(), "8080")
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	Errorf("migration failed: %s", "dirty version")

	assert.Contains(t, buf.String(), "dirty version")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	WithError(assert.AnError).Info("check-in rejected")

	output := buf.String()
	assert.Contains(t, output, "check-in rejected")
	assert.Contains(t, output, "error")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, nil))

	WithFields(map[string]interface{}{
		"course_id": 3,
		"qr_code":   "abc",
	}).Info("registration created")

	output := buf.String()
	assert.Contains(t, output, "registration created")
	assert.Contains(t, output, "course_id")
	assert.Contains(t, output, "qr_code")
}
