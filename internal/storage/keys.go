package storage

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"go-doc-library/internal/model"
	"go-doc-library/internal/util"
)

const keyPrefixLength = 12

// maxKeyNameBytes keeps "<prefix>_<name>" within the 255-byte file name
// limit of common filesystems.
const maxKeyNameBytes = 255 - keyPrefixLength - 1

// NewStorageKey derives a unique key "<category>/<12 hex>_<name>" and the
// sanitized name it embeds. Names that sanitize to nothing become
// "upload.<ext>".
func NewStorageKey(category model.Category, originalName string) (key string, fileName string) {
	fileName, err := util.SanitizeFilename(originalName)
	if err != nil {
		fileName = fallbackName(originalName)
	}
	fileName = truncateName(fileName, maxKeyNameBytes)

	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:keyPrefixLength]
	return string(category) + "/" + prefix + "_" + fileName, fileName
}

// truncateName cuts name to at most limit bytes on a rune boundary, keeping
// the extension when it fits.
func truncateName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) >= limit/2 {
		ext = ""
	}
	stem := name[:len(name)-len(ext)]
	budget := limit - len(ext)

	cut := 0
	for cut < len(stem) {
		_, size := utf8.DecodeRuneInString(stem[cut:])
		if cut+size > budget {
			break
		}
		cut += size
	}

	return stem[:cut] + ext
}

func fallbackName(originalName string) string {
	ext := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, util.Extension(originalName))

	if ext == "" {
		return "upload"
	}
	return "upload." + ext
}
