package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"lingoflow/internal/dto/resp"
	"lingoflow/internal/export"
	"lingoflow/internal/metrics"
	"lingoflow/internal/progress"
	"lingoflow/internal/repository"
	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/constraints"
	"lingoflow/pkg/logger"

	"go.uber.org/zap"
)

// FeatureService sits between the HTTP handlers and a FeatureStore. It routes
// list requests, classifies store errors and records store metrics.
type FeatureService struct {
	store    repository.FeatureStore
	observer metrics.StoreObserver
}

func NewFeatureService(store repository.FeatureStore, observer metrics.StoreObserver) *FeatureService {
	if observer == nil {
		observer = metrics.NewNopObserver()
	}
	return &FeatureService{store: store, observer: observer}
}

// ListFeatures returns all features, or those matching query when it is not
// empty, narrowed to an exact version when one is given.
func (s *FeatureService) ListFeatures(ctx context.Context, query, version string) ([]v1.Feature, error) {
	var (
		features []v1.Feature
		err      error
	)
	if query == "" {
		features, err = s.listAll(ctx)
	} else {
		start := time.Now()
		features, err = s.store.Search(ctx, query)
		err = s.observe("search", start, err)
	}
	if err != nil {
		return nil, err
	}
	if query == "" && version == "" {
		s.observer.SetFeatureCount(len(features))
	}
	if version != "" {
		features = slices.DeleteFunc(features, func(f v1.Feature) bool {
			return f.Version != version
		})
	}
	return features, nil
}

func (s *FeatureService) GetFeature(ctx context.Context, id string) (*v1.Feature, error) {
	start := time.Now()
	f, err := s.store.GetByID(ctx, id)
	if err = s.observe("get", start, err); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeatureService) CreateFeature(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error) {
	start := time.Now()
	f, err := s.store.Create(ctx, in)
	if err = s.observe("create", start, err); err != nil {
		return nil, err
	}
	logger.Info("feature created",
		zap.String("id", f.ID),
		zap.String("name", f.Name),
		zap.String("version", f.Version),
		zap.Int("fields", len(f.Fields)),
	)
	return f, nil
}

func (s *FeatureService) UpdateFeature(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error) {
	start := time.Now()
	f, err := s.store.Update(ctx, id, in)
	if err = s.observe("update", start, err); err != nil {
		return nil, err
	}
	logger.Info("feature updated", zap.String("id", id), zap.Bool("fields_replaced", in.Fields != nil))
	return f, nil
}

// DeleteFeature returns repository.ErrFeatureNotFound when nothing was removed.
func (s *FeatureService) DeleteFeature(ctx context.Context, id string) error {
	start := time.Now()
	found, err := s.store.Delete(ctx, id)
	if err = s.observe("delete", start, err); err != nil {
		return err
	}
	if !found {
		return repository.ErrFeatureNotFound
	}
	logger.Info("feature deleted", zap.String("id", id))
	return nil
}

// ListVersions returns the distinct versions in use, newest first.
func (s *FeatureService) ListVersions(ctx context.Context) ([]string, error) {
	features, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(features))
	versions := make([]string, 0, len(features))
	for _, f := range features {
		if _, ok := seen[f.Version]; ok {
			continue
		}
		seen[f.Version] = struct{}{}
		versions = append(versions, f.Version)
	}
	SortVersions(versions)
	return versions, nil
}

func (s *FeatureService) FeatureProgress(ctx context.Context, id string) (*resp.ProgressResponse, error) {
	f, err := s.GetFeature(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := progress.FeatureStats(f.Fields)
	out := &resp.ProgressResponse{
		Progress: progress.Feature(f.Fields),
		Filled:   stats.Filled,
		Total:    stats.Total,
		Fields:   make([]resp.FieldProgress, 0, len(f.Fields)),
	}
	for _, field := range f.Fields {
		out.Fields = append(out.Fields, resp.FieldProgress{
			ID:       field.ID,
			Key:      field.Key,
			Progress: progress.Field(field.Translations),
		})
	}
	return out, nil
}

// ExportFeature checks the format before touching the store so an unknown
// format is reported even for a missing feature.
func (s *FeatureService) ExportFeature(ctx context.Context, id, format string) (*export.File, error) {
	if !slices.Contains(constraints.FeatureFormats, format) {
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
	}
	f, err := s.GetFeature(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := export.Feature(*f, format)
	if err != nil {
		return nil, &BackendError{Op: "export feature", Err: err}
	}
	return file, nil
}

func (s *FeatureService) ExportField(ctx context.Context, id, fieldID, format string) (*export.File, error) {
	if !slices.Contains(constraints.FieldFormats, format) {
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownFormat, format)
	}
	f, err := s.GetFeature(ctx, id)
	if err != nil {
		return nil, err
	}
	field, ok := f.FieldByID(fieldID)
	if !ok {
		return nil, repository.ErrFieldNotFound
	}
	return export.Field(*field, format)
}

func (s *FeatureService) Health(ctx context.Context) error {
	start := time.Now()
	return s.observe("health", start, s.store.Health(ctx))
}

func (s *FeatureService) listAll(ctx context.Context) ([]v1.Feature, error) {
	start := time.Now()
	features, err := s.store.ListAll(ctx)
	if err = s.observe("list", start, err); err != nil {
		return nil, err
	}
	return features, nil
}

// observe records the call and wraps anything that is not a caller error.
func (s *FeatureService) observe(op string, start time.Time, err error) error {
	elapsed := time.Since(start).Seconds()

	var verr *repository.ValidationError
	switch {
	case err == nil:
		s.observer.ObserveStoreOp(op, "ok", elapsed)
		return nil
	case errors.Is(err, repository.ErrFeatureNotFound), errors.Is(err, repository.ErrFieldNotFound):
		s.observer.ObserveStoreOp(op, "not_found", elapsed)
		return err
	case errors.As(err, &verr):
		s.observer.ObserveStoreOp(op, "invalid", elapsed)
		return err
	}
	s.observer.ObserveStoreOp(op, "error", elapsed)
	return &BackendError{Op: op, Err: err}
}
