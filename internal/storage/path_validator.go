package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"go-doc-library/pkg/apierror"
)

// PathValidator maps storage keys onto paths below a root directory.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// ResolveKey returns the absolute path for key. Keys must be relative, must
// not climb out of the root and must name a file, not the root itself.
func (v *PathValidator) ResolveKey(key string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	if normalized == "" || strings.HasPrefix(normalized, "/") {
		return "", apierror.New(apierror.CodeInvalidPath, "storage key must be a relative path", key, http.StatusBadRequest)
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", apierror.New(apierror.CodeInvalidPath, "storage key contains invalid characters", key, http.StatusBadRequest)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.New(apierror.CodePathTraversal, "path traversal attempt detected", key, http.StatusForbidden)
		}
	}

	cleanRel := filepath.Clean(normalized)
	if cleanRel == "." {
		return "", apierror.New(apierror.CodeInvalidPath, "storage key must name a file", key, http.StatusBadRequest)
	}

	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if resolvedAbs == v.rootAbs || !isWithinRoot(v.rootAbs, resolvedAbs) {
		return "", apierror.New(apierror.CodePathTraversal, "resolved path is outside storage root", key, http.StatusForbidden)
	}

	return resolvedAbs, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
