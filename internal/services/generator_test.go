package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-backend/internal/config"
)

func TestLoadModelHandle_BackendDisabled(t *testing.T) {
	handle, err := LoadModelHandle(context.Background(), &config.Config{ModelBackend: config.BackendNone}, nil)

	assert.Nil(t, handle)
	var loadErr *ModelLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "config", loadErr.Stage)
}

func TestLoadModelHandle_BadTokenizer(t *testing.T) {
	cfg := &config.Config{
		ModelBackend:      config.BackendOllama,
		ModelName:         "tinyllama",
		TokenizerEncoding: "no_such_encoding",
	}

	handle, err := LoadModelHandle(context.Background(), cfg, nil)

	assert.Nil(t, handle)
	var loadErr *ModelLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "tokenizer", loadErr.Stage)
}

func TestModelLoadError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ModelLoadError{Stage: "model", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "model")
	assert.Contains(t, err.Error(), "boom")
}

func TestResolveDevice_Explicit(t *testing.T) {
	assert.Equal(t, "cpu", ResolveDevice("cpu"))
	assert.Equal(t, "cuda", ResolveDevice("cuda"))
	assert.Contains(t, []string{"cpu", "cuda", "mps"}, ResolveDevice("auto"))
}

func TestModelHandle_CloseNil(t *testing.T) {
	var h *ModelHandle
	assert.NoError(t, h.Close())
}
