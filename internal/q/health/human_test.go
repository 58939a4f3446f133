package health

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanError(t *testing.T) {
	err := NewHumanErr("cannot read left.txt", "read_buffer", "path", "left.txt")
	assert.Equal(t, "cannot read left.txt", err.Error())
	assert.Equal(t, "read_buffer[path=left.txt]", err.(*HumanErr).HealthErr.Error())
	assert.Equal(t, KindInput, KindOf(err))

	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := LogErr(logger, err)
	assert.Same(t, err, got)
	assert.Contains(t, buf.String(), `msg=read_buffer path=left.txt kind=input`)
}

func TestHumanError_EmptyHumanMessage(t *testing.T) {
	err := NewHumanErr("", "read_buffer", "path", "x")
	assert.Equal(t, "read_buffer[path=x]", err.Error())
}
