package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/lang"

	"github.com/google/uuid"
)

var (
	ErrFeatureNotFound = errors.New("feature not found")
	ErrFieldNotFound   = errors.New("field not found")
)

// ValidationError reports missing or blank required input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FeatureStore persists features together with their embedded fields.
type FeatureStore interface {
	// ListAll returns every feature, most recently updated first.
	ListAll(ctx context.Context) ([]v1.Feature, error)
	GetByID(ctx context.Context, id string) (*v1.Feature, error)
	Create(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error)
	// Update merges the provided scalars; a non-nil Fields replaces the list.
	Update(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error)
	// Delete reports whether a feature was removed. A missing id is not an error.
	Delete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, query string) ([]v1.Feature, error)
	Health(ctx context.Context) error
}

// nowFunc is truncated to milliseconds so every backend round-trips it exactly.
var nowFunc = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newID() string {
	return uuid.New().String()
}

// ValidateCreate checks the required members of a create request.
func ValidateCreate(in v1.CreateFeatureInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Field: "name", Message: "feature name is required"}
	case strings.TrimSpace(in.Version) == "":
		return &ValidationError{Field: "version", Message: "version is required"}
	case strings.TrimSpace(in.Date) == "":
		return &ValidationError{Field: "date", Message: "date is required"}
	case len(in.Fields) == 0:
		return &ValidationError{Field: "fields", Message: "at least one field is required"}
	}
	return nil
}

// newFeature builds the record a successful Create persists.
func newFeature(in v1.CreateFeatureInput) v1.Feature {
	now := nowFunc()
	return v1.Feature{
		ID:        newID(),
		Name:      in.Name,
		Version:   in.Version,
		Date:      in.Date,
		Fields:    withFieldIDs(in.Fields),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// applyUpdate merges in onto f and stamps UpdatedAt.
func applyUpdate(f *v1.Feature, in v1.UpdateFeatureInput) {
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.Version != nil {
		f.Version = *in.Version
	}
	if in.Date != nil {
		f.Date = *in.Date
	}
	if in.Fields != nil {
		f.Fields = withFieldIDs(*in.Fields)
	}
	f.UpdatedAt = nowFunc()
}

// withFieldIDs copies fields, generating ids for entries without one and for
// ids already taken earlier in the list. Field ids are unique per feature only.
func withFieldIDs(fields []v1.Field) []v1.Field {
	out := make([]v1.Field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = f.Clone()
		if _, dup := seen[f.ID]; f.ID == "" || dup {
			f.ID = newID()
		}
		seen[f.ID] = struct{}{}
		f.Translations = canonicalTranslations(f.Translations)
		out = append(out, f)
	}
	return out
}

// canonicalTranslations rewrites codes that resolve to a registry language
// ("zh-cn", "zh_CN") to the registry spelling. Unknown codes are kept as sent.
// An alias only fills a slot the exact spelling left empty.
func canonicalTranslations(t v1.Translations) v1.Translations {
	out := make(v1.Translations, len(t))
	aliases := make(map[string]string)
	for code, v := range t {
		l, ok := lang.Lookup(code)
		switch {
		case !ok || l.Code == code:
			out[code] = v
		case v != "" || aliases[l.Code] == "":
			aliases[l.Code] = v
		}
	}
	for code, v := range aliases {
		if prev, ok := out[code]; !ok || (prev == "" && v != "") {
			out[code] = v
		}
	}
	return out
}

// sortByUpdated orders most recently updated first; ties keep input order.
func sortByUpdated(features []v1.Feature) {
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].UpdatedAt.After(features[j].UpdatedAt)
	})
}
