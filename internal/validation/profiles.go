package validation

import "go-doc-library/internal/model"

// Profiles maps each category to the rules its uploads must satisfy.
type Profiles map[model.Category]Profile

func NewProfiles(document Profile, image Profile) Profiles {
	return Profiles{
		model.CategoryResumes:  document,
		model.CategoryProjects: image,
		model.CategoryProfile:  image,
	}
}

func DefaultProfiles() Profiles {
	return NewProfiles(DocumentProfile(DefaultDocumentMaxBytes, DefaultDocumentExtensions), ImageProfile(DefaultImageMaxBytes))
}

func (p Profiles) For(category model.Category) (Profile, error) {
	profile, ok := p[category]
	if !ok {
		return Profile{}, model.ErrUnknownCategory
	}
	return profile, nil
}

func (p Profiles) Limits() []model.CategoryLimits {
	limits := make([]model.CategoryLimits, 0, len(p))
	for _, category := range model.Categories() {
		profile, ok := p[category]
		if !ok {
			continue
		}
		limits = append(limits, model.CategoryLimits{
			Category:          category,
			Profile:           profile.Name,
			AllowedExtensions: append([]string(nil), profile.AllowedExtensions...),
			MaxSizeBytes:      profile.MaxSizeBytes,
			MaxSizeHuman:      HumanSize(profile.MaxSizeBytes),
		})
	}
	return limits
}
