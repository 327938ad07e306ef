package files

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url, err := store.Save("essay.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, URLPrefix+"/"))
	assert.True(t, strings.HasSuffix(url, "_essay.pdf"))

	data, err := store.Open(url)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	// works with the bare name too
	data, err = store.Open(strings.TrimPrefix(url, URLPrefix+"/"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestLocalStoreSaveDoesNotCollide(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	url1, err := store.Save("essay.pdf", []byte("one"))
	require.NoError(t, err)
	url2, err := store.Save("essay.pdf", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, url1, url2)

	data, err := store.Open(url1)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)
}

func TestLocalStoreSanitize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "essay final (1).pdf", want: "essay_final__1_.pdf"},
		{name: "../../etc/passwd", want: "passwd"},
		{name: "héllo.txt", want: "h_llo.txt"},
		{name: "", want: "file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitize(tt.name), tt.name)
	}
}

func TestLocalStoreOpenNotFound(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(URLPrefix + "/ghost.pdf")
	assert.Equal(t, ErrNotFound, err)
}
