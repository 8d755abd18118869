package v1

import "time"

// Translations maps a language code to the translated text. Missing or blank
// entries mean the field is untranslated in that language.
type Translations map[string]string

type Field struct {
	ID           string       `json:"id"`
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Translations Translations `json:"translations"`
}

type Feature struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Date      string    `json:"date"`
	Fields    []Field   `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DataStore is the whole persisted document of the file backend.
type DataStore struct {
	Features []Feature `json:"features"`
}

// CreateFeatureInput carries a new feature. Field ids are optional.
type CreateFeatureInput struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Date    string  `json:"date"`
	Fields  []Field `json:"fields"`
}

// UpdateFeatureInput is a partial update: nil members are left untouched and
// a non-nil Fields replaces the whole field list.
type UpdateFeatureInput struct {
	Name    *string  `json:"name,omitempty"`
	Version *string  `json:"version,omitempty"`
	Date    *string  `json:"date,omitempty"`
	Fields  *[]Field `json:"fields,omitempty"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (f Feature) Clone() Feature {
	out := f
	if f.Fields != nil {
		out.Fields = make([]Field, len(f.Fields))
		for i, field := range f.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

func (f Field) Clone() Field {
	out := f
	if f.Translations != nil {
		out.Translations = make(Translations, len(f.Translations))
		for k, v := range f.Translations {
			out.Translations[k] = v
		}
	}
	return out
}

// FieldByID returns the field with the given id.
func (f *Feature) FieldByID(id string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].ID == id {
			return &f.Fields[i], true
		}
	}
	return nil, false
}
