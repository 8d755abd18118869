package repository

import (
	"context"
	"path/filepath"
	"testing"

	"lingoflow/internal/model"
	v1 "lingoflow/pkg/api/v1"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) (*RemoteStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lingoflow.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s := NewRemoteStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s, db
}

func TestRemoteStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) FeatureStore {
		s, _ := newSQLiteStore(t)
		return s
	})
}

func TestRemoteStore_FieldsKeepPosition(t *testing.T) {
	s, _ := newSQLiteStore(t)
	ctx := context.Background()

	in := loginInput()
	for _, k := range []string{"z_last", "a_first", "m_middle"} {
		in.Fields = append(in.Fields, v1.Field{Key: k, Name: k})
	}
	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"btn_submit", "z_last", "a_first", "m_middle"}
	for i, k := range want {
		if got.Fields[i].Key != k {
			t.Errorf("fields[%d] = %q, want %q", i, got.Fields[i].Key, k)
		}
	}
}

func TestRemoteStore_ReplaceDropsFieldRows(t *testing.T) {
	s, db := newSQLiteStore(t)
	ctx := context.Background()

	in := loginInput()
	in.Fields = append(in.Fields, v1.Field{Key: "second"})
	created, err := s.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	fields := []v1.Field{{Key: "only"}}
	if _, err := s.Update(ctx, created.ID, v1.UpdateFeatureInput{Fields: &fields}); err != nil {
		t.Fatal(err)
	}

	var count int64
	if err := db.Model(&model.FieldRow{}).Where("feature_id = ?", created.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 field row after replace, got %d", count)
	}
	var stale int64
	db.Model(&model.FieldRow{}).Where("id = ?", created.Fields[0].ID).Count(&stale)
	if stale != 0 {
		t.Error("replaced field row still present")
	}
}

func TestRemoteStore_DeleteCascadesFields(t *testing.T) {
	s, db := newSQLiteStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, loginInput())
	if err != nil {
		t.Fatal(err)
	}
	if found, err := s.Delete(ctx, created.ID); err != nil || !found {
		t.Fatalf("Delete = %v, %v", found, err)
	}

	var count int64
	db.Model(&model.FieldRow{}).Count(&count)
	if count != 0 {
		t.Errorf("expected field rows removed, %d remain", count)
	}
}

func TestRemoteStore_Health(t *testing.T) {
	s, _ := newSQLiteStore(t)
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestRemoteStore_EmptyList(t *testing.T) {
	s, _ := newSQLiteStore(t)
	all, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", all)
	}
}
