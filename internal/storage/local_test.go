package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalClient {
	t.Helper()
	client, err := NewLocalClient(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, client.EnsureReady(context.Background()))
	return client
}

func TestLocalPutStatDelete(t *testing.T) {
	client := newLocal(t)
	ctx := context.Background()

	data := []byte("hello")
	key := "alice/images/photo.png"
	require.NoError(t, client.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "image/png"))

	info, err := client.Stat(ctx, key)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), info.Size)
	require.False(t, info.ModTime.IsZero())

	require.NoError(t, client.Delete(ctx, key))

	_, err = client.Stat(ctx, key)
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStatMissing(t *testing.T) {
	client := newLocal(t)

	_, err := client.Stat(context.Background(), "alice/images/nope.png")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalListMissingPrefix(t *testing.T) {
	client := newLocal(t)

	objects, err := client.List(context.Background(), "nobody/images")
	require.NoError(t, err)
	require.Empty(t, objects)
}

func TestLocalList(t *testing.T) {
	client := newLocal(t)
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.png"} {
		require.NoError(t, client.Put(ctx, "alice/images/"+name, bytes.NewReader([]byte("x")), 1, "image/png"))
	}
	require.NoError(t, client.Put(ctx, "alice/documents/cv.pdf", bytes.NewReader([]byte("x")), 1, "application/pdf"))

	objects, err := client.List(ctx, "alice/images")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	for _, obj := range objects {
		require.Contains(t, []string{"alice/images/a.png", "alice/images/b.png"}, obj.Key)
	}
}

func TestContentTypeForKey(t *testing.T) {
	require.Equal(t, "application/pdf", ContentTypeForKey("alice/documents/cv.pdf"))
	require.Equal(t, "image/webp", ContentTypeForKey("alice/images/pic.webp"))
	require.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ContentTypeForKey("alice/documents/cv.docx"))
}
