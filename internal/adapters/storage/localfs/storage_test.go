package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "moj-projekt.png", sanitizeFileName("moj projekt.png"))
	assert.Equal(t, "logo.png", sanitizeFileName("logo&?.png"))
	assert.Equal(t, "passwd", sanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "plik", sanitizeFileName("..."))
}

func TestStorage_Save(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	url, err := s.Save(context.Background(), "logo firmy.svg", []byte("<svg/>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, "-logo-firmy.svg"))

	b, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))

	other, err := s.Save(context.Background(), "logo firmy.svg", []byte("<svg/>"))
	require.NoError(t, err)
	assert.NotEqual(t, url, other)
}

func TestStorage_SaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(t.TempDir()).Save(ctx, "a.png", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}
