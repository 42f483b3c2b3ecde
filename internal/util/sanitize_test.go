package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes invalid characters", func(t *testing.T) {
		actual, err := SanitizeFilename(` report<2026>?.pdf `)
		require.NoError(t, err)
		require.Equal(t, "report_2026_.pdf", actual)
	})

	t.Run("replaces whitespace with underscores", func(t *testing.T) {
		actual, err := SanitizeFilename("My Resume  2026.pdf")
		require.NoError(t, err)
		require.Equal(t, "My_Resume_2026.pdf", actual)
	})

	t.Run("drops directory components", func(t *testing.T) {
		actual, err := SanitizeFilename("../../etc/passwd.pdf")
		require.NoError(t, err)
		require.Equal(t, "passwd.pdf", actual)

		actual, err = SanitizeFilename(`C:\Users\me\cv.pdf`)
		require.NoError(t, err)
		require.Equal(t, "cv.pdf", actual)
	})

	t.Run("rejects empty filenames", func(t *testing.T) {
		_, err := SanitizeFilename("   ")
		require.Error(t, err)
	})

	t.Run("trims leading dots", func(t *testing.T) {
		actual, err := SanitizeFilename(".hidden.png")
		require.NoError(t, err)
		require.Equal(t, "hidden.png", actual)
	})

	t.Run("rejects names that are only dots", func(t *testing.T) {
		_, err := SanitizeFilename("..")
		require.Error(t, err)
	})

	t.Run("prefixes windows reserved names", func(t *testing.T) {
		actual, err := SanitizeFilename("CON.pdf")
		require.NoError(t, err)
		require.Equal(t, "_CON.pdf", actual)
	})

	t.Run("truncates long filenames keeping the extension", func(t *testing.T) {
		actual, err := SanitizeFilename(strings.Repeat("a", 300) + ".pdf")
		require.NoError(t, err)
		require.Len(t, []rune(actual), 255)
		require.True(t, strings.HasSuffix(actual, ".pdf"))
	})

	t.Run("strips all invisible unicode characters", func(t *testing.T) {
		input := "file\u200B\u200C\u200D\u2060\uFEFFname.txt"
		actual, err := SanitizeFilename(input)
		require.NoError(t, err)
		require.Equal(t, "filename.txt", actual)
	})

	t.Run("rejects filenames that become empty after stripping invisible chars", func(t *testing.T) {
		_, err := SanitizeFilename("\u200B\u200C\u200D")
		require.Error(t, err)
	})

	t.Run("rune-safe truncation preserves multi-byte characters", func(t *testing.T) {
		input := strings.Repeat("é", 260) + ".txt"

		actual, err := SanitizeFilename(input)
		require.NoError(t, err)
		require.LessOrEqual(t, len([]rune(actual)), 255)
		require.True(t, utf8.ValidString(actual))
	})
}

func TestExtension(t *testing.T) {
	t.Parallel()

	require.Equal(t, "pdf", Extension("Resume.PDF"))
	require.Equal(t, "gz", Extension("archive.tar.gz"))
	require.Equal(t, "", Extension("README"))
	require.Equal(t, "", Extension("dir.d/README"))
}
