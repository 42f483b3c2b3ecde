package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentTypeForName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "image/jpeg", ContentTypeForName("photo.jpg"))
	require.Equal(t, "image/jpeg", ContentTypeForName("photo.JPEG"))
	require.Equal(t, "image/png", ContentTypeForName("a.png"))
	require.Equal(t, "image/webp", ContentTypeForName("a.webp"))
	require.Equal(t, "image/gif", ContentTypeForName("a.gif"))
	require.Equal(t, "application/pdf", ContentTypeForName("cv.pdf"))
	require.Equal(t, DefaultContentType, ContentTypeForName("notes.txt"))
	require.Equal(t, DefaultContentType, ContentTypeForName("noext"))
}

func TestIsImageExtension(t *testing.T) {
	t.Parallel()

	require.True(t, IsImageExtension(".png"))
	require.True(t, IsImageExtension("webp"))
	require.True(t, IsImageExtension(" .JPEG "))
	require.False(t, IsImageExtension(".pdf"))
	require.False(t, IsImageExtension(""))
}

func TestIsPDFMIME(t *testing.T) {
	t.Parallel()

	require.True(t, IsPDFMIME("application/pdf"))
	require.True(t, IsPDFMIME(" Application/PDF "))
	require.False(t, IsPDFMIME("image/png"))
	require.True(t, IsImageMIME("image/png"))
}
