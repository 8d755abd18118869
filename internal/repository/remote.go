package repository

import (
	"context"
	"errors"
	"fmt"

	"lingoflow/internal/model"
	v1 "lingoflow/pkg/api/v1"

	"gorm.io/gorm"
)

// RemoteStore keeps features and fields in two relational tables joined by
// fields.feature_id and reassembles them into the API shape on read.
type RemoteStore struct {
	db *gorm.DB
}

func NewRemoteStore(db *gorm.DB) *RemoteStore {
	return &RemoteStore{db: db}
}

// Migrate creates or updates the features and fields tables.
func (s *RemoteStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&model.FeatureRow{}, &model.FieldRow{})
}

func (s *RemoteStore) ListAll(ctx context.Context) ([]v1.Feature, error) {
	var rows []model.FeatureRow
	err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	return s.assemble(ctx, s.db, rows)
}

func (s *RemoteStore) GetByID(ctx context.Context, id string) (*v1.Feature, error) {
	return s.get(ctx, s.db, id)
}

func (s *RemoteStore) Create(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	f := newFeature(in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := featureRow(f)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert feature: %w", err)
		}
		return insertFields(tx, f.ID, f.Fields)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Update replaces fields by deleting every row of the feature and inserting
// the new list; field ids missing from the new list are gone afterwards.
func (s *RemoteStore) Update(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error) {
	var updated *v1.Feature
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		applyUpdate(current, in)

		err = tx.Model(&model.FeatureRow{}).Where("id = ?", id).Updates(map[string]any{
			"name":       current.Name,
			"version":    current.Version,
			"date":       current.Date,
			"updated_at": current.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("update feature: %w", err)
		}
		if in.Fields != nil {
			if err := tx.Where("feature_id = ?", id).Delete(&model.FieldRow{}).Error; err != nil {
				return fmt.Errorf("delete fields: %w", err)
			}
			if err := insertFields(tx, id, current.Fields); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RemoteStore) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feature_id = ?", id).Delete(&model.FieldRow{}).Error; err != nil {
			return fmt.Errorf("delete fields: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.FeatureRow{})
		if res.Error != nil {
			return fmt.Errorf("delete feature: %w", res.Error)
		}
		found = res.RowsAffected > 0
		return nil
	})
	return found, err
}

// Search has no server-side filter: it loads everything and filters here.
func (s *RemoteStore) Search(ctx context.Context, query string) ([]v1.Feature, error) {
	features, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(features, query), nil
}

func (s *RemoteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *RemoteStore) get(ctx context.Context, db *gorm.DB, id string) (*v1.Feature, error) {
	var row model.FeatureRow
	if err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeatureNotFound
		}
		return nil, fmt.Errorf("get feature: %w", err)
	}
	features, err := s.assemble(ctx, db, []model.FeatureRow{row})
	if err != nil {
		return nil, err
	}
	return &features[0], nil
}

// assemble batch-loads the fields of rows with one IN query and groups them
// by feature id, keeping the row order.
func (s *RemoteStore) assemble(ctx context.Context, db *gorm.DB, rows []model.FeatureRow) ([]v1.Feature, error) {
	if len(rows) == 0 {
		return []v1.Feature{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	var fieldRows []model.FieldRow
	err := db.WithContext(ctx).
		Where("feature_id IN ?", ids).
		Order("position ASC").
		Find(&fieldRows).Error
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	byFeature := make(map[string][]model.FieldRow, len(rows))
	for _, fr := range fieldRows {
		byFeature[fr.FeatureID] = append(byFeature[fr.FeatureID], fr)
	}

	features := make([]v1.Feature, 0, len(rows))
	for _, r := range rows {
		features = append(features, r.ToFeature(byFeature[r.ID]))
	}
	return features, nil
}

func featureRow(f v1.Feature) model.FeatureRow {
	return model.FeatureRow{
		ID:        f.ID,
		Name:      f.Name,
		Version:   f.Version,
		Date:      f.Date,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func insertFields(tx *gorm.DB, featureID string, fields []v1.Field) error {
	if len(fields) == 0 {
		return nil
	}
	rows := model.NewFieldRows(featureID, fields)
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert fields: %w", err)
	}
	return nil
}
