package sync

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSHA1(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "empty file",
			content: "",
			want:    "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		},
		{
			name:    "known content",
			content: "hello world",
			want:    "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			got, err := FileSHA1(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileSHA1_MissingFile(t *testing.T) {
	_, err := FileSHA1(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFileSHA1_Deterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte("same bytes"), 0o600))

	first, err := FileSHA1(path)
	require.NoError(t, err)

	second, err := FileSHA1(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
