package storage

import (
	"path"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"go-doc-library/internal/model"
)

var keyPattern = regexp.MustCompile(`^resumes/[0-9a-f]{12}_(.+)$`)

func TestNewStorageKey(t *testing.T) {
	t.Parallel()

	t.Run("embeds category, prefix and sanitized name", func(t *testing.T) {
		key, name := NewStorageKey(model.CategoryResumes, "../My CV.pdf")
		require.Equal(t, "My_CV.pdf", name)

		match := keyPattern.FindStringSubmatch(key)
		require.NotNil(t, match, key)
		require.Equal(t, name, match[1])
	})

	t.Run("falls back when nothing survives sanitization", func(t *testing.T) {
		key, name := NewStorageKey(model.CategoryResumes, "\u200B\u200B")
		require.Equal(t, "upload", name)
		require.Regexp(t, keyPattern, key)

		_, name = NewStorageKey(model.CategoryResumes, "...PDF")
		require.Equal(t, "PDF", name)

		_, name = NewStorageKey(model.CategoryResumes, "  ")
		require.Equal(t, "upload", name)
	})

	t.Run("keys are unique for the same name", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 200 {
			key, _ := NewStorageKey(model.CategoryResumes, "cv.pdf")
			_, dup := seen[key]
			require.False(t, dup)
			seen[key] = struct{}{}
		}
	})
}

func TestFallbackName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "upload.pdf", fallbackName("\u200B.PDF"))
	require.Equal(t, "upload", fallbackName(""))
	require.Equal(t, "upload", fallbackName("x.$$"))
}

func TestNewStorageKeyFitsFileNameLimit(t *testing.T) {
	t.Parallel()

	t.Run("long ascii name keeps its extension", func(t *testing.T) {
		key, name := NewStorageKey(model.CategoryResumes, strings.Repeat("a", 246)+".pdf")
		require.Len(t, name, maxKeyNameBytes)
		require.True(t, strings.HasSuffix(name, ".pdf"))
		require.LessOrEqual(t, len(path.Base(key)), 255)
	})

	t.Run("multibyte name is cut on a rune boundary", func(t *testing.T) {
		key, name := NewStorageKey(model.CategoryResumes, strings.Repeat("ж", 200)+".pdf")
		require.True(t, utf8.ValidString(name))
		require.LessOrEqual(t, len(name), maxKeyNameBytes)
		require.True(t, strings.HasSuffix(name, "ж.pdf"))
		require.LessOrEqual(t, len(path.Base(key)), 255)
	})

	t.Run("short names are untouched", func(t *testing.T) {
		_, name := NewStorageKey(model.CategoryResumes, "cv.pdf")
		require.Equal(t, "cv.pdf", name)
	})
}

func TestTruncateName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abcdef.pdf", truncateName("abcdefgh.pdf", 10))
	require.Equal(t, "ab", truncateName("abcdef", 2))
	require.Equal(t, "ééé.pdf", truncateName("éééé.pdf", 11))
	require.Equal(t, "abcdefgh", truncateName("abcdefgh.verylongext", 8))
}
