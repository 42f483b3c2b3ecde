package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"slices"
	"strings"

	_ "golang.org/x/image/webp"

	"go-doc-library/internal/model"
	"go-doc-library/internal/util"
)

const (
	MiB = int64(1024 * 1024)

	DefaultDocumentMaxBytes = 10 * MiB
	DefaultImageMaxBytes    = 5 * MiB

	pdfSniffWindow = 1024
)

var (
	DefaultDocumentExtensions = []string{"pdf"}
	DefaultImageExtensions    = []string{"jpg", "jpeg", "png", "webp", "gif"}

	pdfMagic = []byte("%PDF-")
)

// File is an uploaded file whose size can be probed by seeking.
type File interface {
	io.ReadSeeker
	Name() string
}

type SniffKind string

const (
	SniffNone  SniffKind = ""
	SniffPDF   SniffKind = "pdf"
	SniffImage SniffKind = "image"
)

// Profile is a named set of upload rules.
type Profile struct {
	Name              string
	AllowedExtensions []string
	MaxSizeBytes      int64
	Sniff             SniffKind
}

func DocumentProfile(maxBytes int64, extensions []string) Profile {
	if maxBytes <= 0 {
		maxBytes = DefaultDocumentMaxBytes
	}
	exts := NormalizeExtensions(extensions)
	if len(exts) == 0 {
		exts = slices.Clone(DefaultDocumentExtensions)
	}

	sniff := SniffNone
	if len(exts) == 1 && exts[0] == "pdf" {
		sniff = SniffPDF
	}

	return Profile{Name: "document", AllowedExtensions: exts, MaxSizeBytes: maxBytes, Sniff: sniff}
}

func ImageProfile(maxBytes int64) Profile {
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxBytes
	}

	return Profile{
		Name:              "image",
		AllowedExtensions: slices.Clone(DefaultImageExtensions),
		MaxSizeBytes:      maxBytes,
		Sniff:             SniffImage,
	}
}

// WithoutSniff returns a copy of p that skips the content check.
func (p Profile) WithoutSniff() Profile {
	p.Sniff = SniffNone
	return p
}

func (p Profile) Allows(extension string) bool {
	return slices.Contains(p.AllowedExtensions, strings.ToLower(extension))
}

// Validate checks file against profile and returns its size. Checks run in a
// fixed order so the reported kind is deterministic: extension present,
// extension allowed, size limit, non-empty, then content. On return the file
// is positioned at offset zero.
func Validate(file File, profile Profile) (int64, error) {
	name := file.Name()
	ext := util.Extension(name)
	if ext == "" {
		return 0, model.NewValidationError(model.ValidationNoExtension, "file %q has no extension", name)
	}

	if !profile.Allows(ext) {
		return 0, model.NewValidationError(model.ValidationInvalidExtension,
			"extension %q is not allowed, expected one of %s", ext, strings.Join(profile.AllowedExtensions, ", "))
	}

	size, err := probeSize(file)
	if err != nil {
		return 0, err
	}

	if size > profile.MaxSizeBytes {
		return 0, model.NewValidationError(model.ValidationTooLarge,
			"file is %s, the limit is %s", HumanSize(size), HumanSize(profile.MaxSizeBytes))
	}

	if size == 0 {
		return 0, model.NewValidationError(model.ValidationEmptyFile, "file %q is empty", name)
	}

	if err := sniff(file, profile.Sniff, ext); err != nil {
		return 0, err
	}

	return size, nil
}

func probeSize(file io.Seeker) (int64, error) {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measure upload: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind upload: %w", err)
	}

	return size, nil
}

func sniff(file io.ReadSeeker, kind SniffKind, ext string) error {
	if kind == SniffNone {
		return nil
	}

	defer file.Seek(0, io.SeekStart) //nolint:errcheck

	switch kind {
	case SniffPDF:
		head := make([]byte, pdfSniffWindow)
		n, err := io.ReadFull(file, head)
		if err != nil && err != io.ErrUnexpectedEOF {
			return fmt.Errorf("read upload header: %w", err)
		}
		if !bytes.Contains(head[:n], pdfMagic) {
			return model.NewValidationError(model.ValidationContentMismatch, "file content is not a PDF document")
		}
	case SniffImage:
		if _, _, err := image.DecodeConfig(file); err != nil {
			return model.NewValidationError(model.ValidationContentMismatch, "file content is not a %s image", ext)
		}
	}

	return nil
}

// NormalizeExtensions lowercases entries, drops a leading dot, and removes
// blanks and duplicates, so " .PDF" and "pdf" are the same entry.
func NormalizeExtensions(extensions []string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if cleaned == "" || slices.Contains(out, cleaned) {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

func HumanSize(size int64) string {
	switch {
	case size >= MiB:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(MiB))
	case size >= 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
