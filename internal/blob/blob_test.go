package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	info, err := store.Put(ctx, "inspections/abc/photo.jpg", []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size)

	content, err := store.Get(ctx, "inspections/abc/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), content)

	// Mutating the returned slice must not corrupt the stored copy.
	content[0] = 'X'
	again, err := store.Get(ctx, "inspections/abc/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), again)

	require.NoError(t, store.Delete(ctx, "inspections/abc/photo.jpg"))
	_, err = store.Get(ctx, "inspections/abc/photo.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "inspections/abc/photo.jpg"), ErrNotFound)
}

func TestFilesystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(ctx, "inspections/abc/photo.jpg", []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)

	content, err := store.Get(ctx, "inspections/abc/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), content)

	require.NoError(t, store.Delete(ctx, "inspections/abc/photo.jpg"))
	_, err = store.Get(ctx, "inspections/abc/photo.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside", "a/../../outside", "/etc/passwd", "."} {
		t.Run(key, func(t *testing.T) {
			_, err := store.Put(ctx, key, []byte("x"), "text/plain")
			assert.Error(t, err)
			_, err = store.Get(ctx, key)
			assert.Error(t, err)
		})
	}
}
