package avatars

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskApi(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hunter1.png"), []byte("png-bytes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "hunter2.png"), []byte("png-bytes"), 0o644))

	api, err := NewDiskApi(root)
	require.NoError(t, err)

	names, err := api.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hunter1.png", "hunter2.png"}, names)

	path, err := api.Path("hunter1.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "hunter1.png"), path)

	_, err = api.Path("nope.png")
	assert.ErrorIs(t, err, ErrAvatarNotFound)
	_, err = api.Path("../secrets.txt")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = api.Path("")
	assert.ErrorIs(t, err, ErrInvalidName)
	// the custom dir is not a servable preset
	_, err = api.Path("custom")
	assert.ErrorIs(t, err, ErrAvatarNotFound)
}

func TestDiskApi_custom(t *testing.T) {
	api, err := NewDiskApi(t.TempDir())
	require.NoError(t, err)

	_, err = api.CustomPath("h1")
	assert.ErrorIs(t, err, ErrAvatarNotFound)

	require.NoError(t, api.SaveCustom("h1", []byte("custom-png")))

	path, err := api.CustomPath("h1")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("custom-png"), data)
}
