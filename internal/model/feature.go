package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	v1 "lingoflow/pkg/api/v1"
)

// FeatureRow is the features table. Timestamps are written by the store, not
// by gorm's auto-tracking.
type FeatureRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:255;not null"`
	Version   string    `gorm:"size:64;index"`
	Date      string    `gorm:"size:64"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;index"`
}

func (FeatureRow) TableName() string { return "features" }

// FieldRow is the fields table, joined to features by FeatureID. Field ids are
// client-visible and only unique within their feature.
type FieldRow struct {
	FeatureID    string           `gorm:"primaryKey;size:36"`
	ID           string           `gorm:"primaryKey;size:36"`
	Position     int              `gorm:"not null;default:0"`
	Key          string           `gorm:"column:key;size:255"`
	Name         string           `gorm:"size:255"`
	Translations TranslationsJSON `gorm:"type:text"`
}

func (FieldRow) TableName() string { return "fields" }

// TranslationsJSON stores a translation map as a JSON text column.
type TranslationsJSON v1.Translations

func (t TranslationsJSON) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *TranslationsJSON) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TranslationsJSON{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("translations: unsupported column type %T", src)
	}
	m := TranslationsJSON{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("translations: %w", err)
		}
	}
	*t = m
	return nil
}

// ToFeature reassembles the API shape from a feature row and its field rows,
// which must already be in position order.
func (r FeatureRow) ToFeature(fields []FieldRow) v1.Feature {
	f := v1.Feature{
		ID:        r.ID,
		Name:      r.Name,
		Version:   r.Version,
		Date:      r.Date,
		Fields:    make([]v1.Field, 0, len(fields)),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	for _, fr := range fields {
		f.Fields = append(f.Fields, v1.Field{
			ID:           fr.ID,
			Key:          fr.Key,
			Name:         fr.Name,
			Translations: v1.Translations(fr.Translations),
		})
	}
	return f
}

// NewFieldRows flattens fields for insertion under featureID.
func NewFieldRows(featureID string, fields []v1.Field) []FieldRow {
	rows := make([]FieldRow, 0, len(fields))
	for i, f := range fields {
		rows = append(rows, FieldRow{
			ID:           f.ID,
			FeatureID:    featureID,
			Position:     i,
			Key:          f.Key,
			Name:         f.Name,
			Translations: TranslationsJSON(f.Translations),
		})
	}
	return rows
}
