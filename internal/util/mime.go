package util

import "strings"

const DefaultContentType = "application/octet-stream"

var contentTypesByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
}

// ContentTypeForName maps a filename's extension onto the fixed content type
// table. Unknown extensions are served as application/octet-stream.
func ContentTypeForName(name string) string {
	if contentType, ok := contentTypesByExtension[Extension(name)]; ok {
		return contentType
	}
	return DefaultContentType
}

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "image/")
}

func IsPDFMIME(mimeType string) bool {
	return strings.EqualFold(strings.TrimSpace(mimeType), "application/pdf")
}

func IsImageExtension(extension string) bool {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), ".")) {
	case "jpg", "jpeg", "png", "webp", "gif":
		return true
	default:
		return false
	}
}
