package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go-doc-library/pkg/apierror"
)

func TestPathValidatorResolveKey(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	t.Run("key resolves inside root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolveKey("resumes/0123456789ab_cv.pdf")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "resumes", "0123456789ab_cv.pdf"), resolved)
	})

	t.Run("backslashes are normalized", func(t *testing.T) {
		resolved, resolveErr := validator.ResolveKey(`profile\photo.jpg`)
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "profile", "photo.jpg"), resolved)
	})

	t.Run("absolute keys are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("/etc/passwd")
		require.Error(t, resolveErr)
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("resumes/../../secrets.txt")
		apiErr, ok := apierror.As(resolveErr)
		require.True(t, ok)
		require.Equal(t, apierror.CodePathTraversal, apiErr.Code)
	})

	t.Run("root itself is rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("./")
		require.Error(t, resolveErr)
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("resumes\nreport.pdf")
		require.Error(t, resolveErr)
	})

	t.Run("null bytes are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("resumes\x00/report.pdf")
		require.Error(t, resolveErr)
	})

	t.Run("within root check does not match sibling prefixes", func(t *testing.T) {
		require.False(t, isWithinRoot(`/tmp/root`, `/tmp/rootless/file.txt`))
		require.True(t, isWithinRoot(`/tmp/root`, `/tmp/root/file.txt`))
	})
}
