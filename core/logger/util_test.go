package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "fail", Status(errors.New("boom")))
}

func TestRoundMS(t *testing.T) {
	assert.Equal(t, time.Duration(0), RoundMS(-time.Second))
	assert.Equal(t, 12*time.Millisecond, RoundMS(12*time.Millisecond+300*time.Microsecond))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc", Sanitize("a\x00b\x1bc"))
	assert.Equal(t, "a\nb\tc", Sanitize("a\nb\tc"))
	assert.Equal(t, "", Sanitize(""))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "привет", SanitizeLimit("привет", 10))
	assert.Equal(t, "прив", SanitizeLimit("привет", 4))
	assert.Equal(t, "", SanitizeLimit("привет", 0))
}

func TestRedactError(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot12345:AAbbCCdd_ee/sendMessage": timeout`)
	got := RedactError(err)
	assert.NotContains(t, got, "12345:AAbbCCdd_ee")
	assert.Contains(t, got, "bot<redacted>")

	assert.Equal(t, "", RedactError(nil))
}
