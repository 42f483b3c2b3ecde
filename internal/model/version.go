package model

import (
	"strings"
	"time"
)

// Category is the namespace a version history belongs to. Each category has
// its own active version and its own storage key prefix.
type Category string

const (
	CategoryResumes  Category = "resumes"
	CategoryProjects Category = "projects"
	CategoryProfile  Category = "profile"
)

var knownCategories = []Category{CategoryResumes, CategoryProjects, CategoryProfile}

func Categories() []Category {
	out := make([]Category, len(knownCategories))
	copy(out, knownCategories)
	return out
}

func ParseCategory(raw string) (Category, error) {
	cleaned := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, category := range knownCategories {
		if category == cleaned {
			return category, nil
		}
	}

	return "", ErrUnknownCategory
}

type VersionState string

const (
	StateActive   VersionState = "active"
	StateInactive VersionState = "inactive"
	StateDeleted  VersionState = "deleted"
)

// VersionRecord is one uploaded artifact in a category's history.
// DeletedAt is terminal: once set the record never changes again.
type VersionRecord struct {
	ID         string     `json:"id"`
	Category   Category   `json:"category"`
	FileName   string     `json:"file_name"`
	StorageKey string     `json:"storage_key"`
	SizeBytes  int64      `json:"size_bytes"`
	MimeType   string     `json:"mime_type"`
	IsActive   bool       `json:"is_active"`
	UploadedBy string     `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

func (r VersionRecord) IsDeleted() bool {
	return r.DeletedAt != nil
}

func (r VersionRecord) State() VersionState {
	switch {
	case r.DeletedAt != nil:
		return StateDeleted
	case r.IsActive:
		return StateActive
	default:
		return StateInactive
	}
}

type LocatorKind string

const (
	LocatorPath LocatorKind = "path"
	LocatorURL  LocatorKind = "url"
)

// Locator points at stored bytes. It is ephemeral and must not be persisted:
// presigned URLs expire and filesystem paths depend on the process config.
type Locator struct {
	Kind      LocatorKind `json:"kind"`
	Value     string      `json:"value"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

type CategoryLimits struct {
	Category          Category `json:"category"`
	Profile           string   `json:"profile"`
	AllowedExtensions []string `json:"allowed_extensions"`
	MaxSizeBytes      int64    `json:"max_size_bytes"`
	MaxSizeHuman      string   `json:"max_size_human"`
}

type StorageInfo struct {
	Backend       string           `json:"backend"`
	PurgeOnDelete bool             `json:"purge_on_delete"`
	Categories    []CategoryLimits `json:"categories"`
}

type Identity struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"typ"`
}
