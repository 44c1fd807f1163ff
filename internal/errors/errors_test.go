package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputError(t *testing.T) {
	underlying := fmt.Errorf("unexpected end of JSON input")
	err := NewInputError("decode fragment", "bbc_2024-02-16_0.json", underlying)

	assert.Contains(t, err.Error(), "decode fragment")
	assert.Contains(t, err.Error(), "bbc_2024-02-16_0.json")
	assert.ErrorIs(t, err, underlying)

	var inputErr *InputError
	require.ErrorAs(t, error(err), &inputErr)
	assert.Equal(t, ErrorTypeInput, inputErr.Type)
}

func TestMergeConflictError(t *testing.T) {
	err := NewMergeConflictError("fox", "42")
	assert.Contains(t, err.Error(), "fox")
	assert.Contains(t, err.Error(), "42")
	assert.Equal(t, ErrorTypeMergeConflict, err.Type)
}

func TestFileError_PermissionDetection(t *testing.T) {
	err := NewFileError("read", "/etc/shadow", stderrors.New("permission denied"))
	assert.Equal(t, ErrorTypePermission, err.Type)

	err = NewFileError("read", "/tmp/x", stderrors.New("no such file or directory"))
	assert.Equal(t, ErrorTypeFile, err.Type)
}

func TestBuildError_Wrapping(t *testing.T) {
	cause := stderrors.New("context canceled")
	err := NewBuildError("bbc", cause)

	assert.Contains(t, err.Error(), "bbc")
	assert.ErrorIs(t, err, cause)
}

func TestConfigError(t *testing.T) {
	cause := stderrors.New("must be positive")
	err := NewConfigError("index.interval", "-1", cause)
	assert.Contains(t, err.Error(), "index.interval")
	assert.ErrorIs(t, err, cause)
}
