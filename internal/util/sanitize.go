package util

import (
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"go-doc-library/pkg/apierror"
)

const maxFilenameRunes = 255

var invalidFilenameChars = regexp.MustCompile(`[<>:"|?*]`)

var repeatedUnderscores = regexp.MustCompile(`_{2,}`)

var windowsReservedNames = map[string]struct{}{
	"CON":  {},
	"PRN":  {},
	"AUX":  {},
	"NUL":  {},
	"COM1": {},
	"COM2": {},
	"COM3": {},
	"COM4": {},
	"COM5": {},
	"COM6": {},
	"COM7": {},
	"COM8": {},
	"COM9": {},
	"LPT1": {},
	"LPT2": {},
	"LPT3": {},
	"LPT4": {},
	"LPT5": {},
	"LPT6": {},
	"LPT7": {},
	"LPT8": {},
	"LPT9": {},
}

// SanitizeFilename turns a client supplied name into a single safe path
// segment: directories are dropped, invisible and control runes removed,
// reserved characters and whitespace replaced with underscores and leading
// dots trimmed so the result can never be hidden or relative.
func SanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apierror.New(apierror.CodeInvalidFilename, "filename cannot be empty", "", http.StatusBadRequest)
	}

	if strings.Contains(trimmed, "\x00") {
		return "", apierror.New(apierror.CodeInvalidFilename, "filename contains null bytes", trimmed, http.StatusBadRequest)
	}

	base := baseName(trimmed)

	builder := strings.Builder{}
	builder.Grow(len(base))

	for _, char := range base {
		switch {
		case unicode.IsControl(char) || isInvisibleUnicode(char):
			continue
		case unicode.IsSpace(char):
			builder.WriteRune('_')
		default:
			builder.WriteRune(char)
		}
	}

	replaced := invalidFilenameChars.ReplaceAllString(builder.String(), "_")
	replaced = repeatedUnderscores.ReplaceAllString(replaced, "_")
	cleaned := strings.Trim(replaced, "._")

	if cleaned == "" {
		return "", apierror.New(apierror.CodeInvalidFilename, "filename is invalid after sanitization", trimmed, http.StatusBadRequest)
	}

	// Truncate by runes, keeping the extension when there is one.
	runes := []rune(cleaned)
	if len(runes) > maxFilenameRunes {
		ext := []rune(filepath.Ext(cleaned))
		if len(ext) >= maxFilenameRunes {
			ext = nil
		}
		runes = append(runes[:maxFilenameRunes-len(ext)], ext...)
	}
	cleaned = string(runes)

	stem := cleaned
	if idx := strings.Index(cleaned, "."); idx >= 0 {
		stem = cleaned[:idx]
	}

	if _, exists := windowsReservedNames[strings.ToUpper(stem)]; exists {
		cleaned = "_" + cleaned
	}

	return cleaned, nil
}

// Extension returns the lowercased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(baseName(name)), "."))
}

func baseName(name string) string {
	normalized := strings.ReplaceAll(name, `\`, "/")
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		return normalized[idx+1:]
	}
	return normalized
}

// isInvisibleUnicode returns true for zero-width, formatting, and other
// invisible Unicode characters that should be stripped from filenames.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u2060', // Word Joiner
		'\uFEFF': // Zero-Width No-Break Space / BOM
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
