package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger, err := New("warn", "json", &buf)
	require.NoError(t, err)

	// Act
	logger.Info("dropped")
	logger.Warn("kept", slog.String("trip", "t1"))

	// Assert
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "t1", line["trip"])
	assert.Equal(t, "reisetagebuch", line["service"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("DEBUG", "text", &buf)
	require.NoError(t, err)

	logger.Debug("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", "json", nil)
	assert.Error(t, err)

	_, err = New("info", "xml", nil)
	assert.Error(t, err)
}
