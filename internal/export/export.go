// Package export renders features and fields into the flat file formats
// translators and mobile builds consume. Every function is pure.
package export

import (
	"errors"
	"fmt"
	"strings"

	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/constraints"
)

var ErrUnknownFormat = errors.New("unknown export format")

// File is a rendered export with a suggested download name.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

// Feature renders a whole feature in one of constraints.FeatureFormats.
func Feature(f v1.Feature, format string) (*File, error) {
	base := safeName(f.Name)
	switch format {
	case constraints.FormatJSON:
		b, err := JSONByField(f)
		if err != nil {
			return nil, err
		}
		return &File{Name: base + "_translations.json", ContentType: "application/json", Content: b}, nil
	case constraints.FormatJSONByLanguage:
		b, err := JSONByLanguage(f)
		if err != nil {
			return nil, err
		}
		return &File{Name: base + "_by_language.json", ContentType: "application/json", Content: b}, nil
	case constraints.FormatCSV:
		return &File{Name: base + "_translations.csv", ContentType: "text/csv", Content: CSV(f)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Field renders a single field in one of constraints.FieldFormats.
func Field(field v1.Field, format string) (*File, error) {
	base := safeName(field.Key)
	switch format {
	case constraints.FormatAndroid:
		return &File{Name: base + "_strings.xml", ContentType: "application/xml", Content: Android(field)}, nil
	case constraints.FormatIOS:
		return &File{Name: base + ".strings", ContentType: "text/plain", Content: IOS(field)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_")

func safeName(s string) string {
	s = nameReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return "export"
	}
	return s
}
