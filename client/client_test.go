package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"lingoflow/internal/api"
	"lingoflow/internal/repository"
	"lingoflow/internal/service"
	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) *LingoClient {
	t.Helper()
	store := repository.NewFileStore(repository.FileOptions{Path: filepath.Join(t.TempDir(), "features.json")})
	srv := httptest.NewServer(api.RegisterRoutes(api.NewFeatureHandler(service.NewFeatureService(store, nil)), nil, 1000))
	t.Cleanup(srv.Close)
	return NewLingoClient(srv.URL+"/", 5*time.Second)
}

func TestClientRoundTrip(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	created, err := c.Create(ctx, v1.CreateFeatureInput{
		Name:    "Checkout",
		Version: "3.1",
		Date:    "2024-05-01",
		Fields: []v1.Field{
			{Key: "pay", Name: "Pay", Translations: v1.Translations{"en": "Pay now", "zh-CN": "立即支付"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Checkout" || got.Fields[0].Translations["zh-CN"] != "立即支付" {
		t.Errorf("get = %+v", got)
	}

	name := "Checkout v2"
	if _, err := c.Update(ctx, created.ID, v1.UpdateFeatureInput{Name: &name}); err != nil {
		t.Fatal(err)
	}
	list, err := c.List(ctx, "v2", "3.1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("list = %d features", len(list))
	}

	versions, err := c.Versions(ctx)
	if err != nil || len(versions) != 1 || versions[0] != "3.1" {
		t.Errorf("versions = %v, %v", versions, err)
	}

	p, err := c.Progress(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Progress != 67 {
		t.Errorf("progress = %d, want 67", p.Progress)
	}

	d, err := c.Export(ctx, created.ID, "json")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "Checkout v2_translations.json" || len(d.Content) == 0 {
		t.Errorf("download = %q (%d bytes)", d.Name, len(d.Content))
	}

	d, err = c.ExportField(ctx, created.ID, created.Fields[0].ID, "android")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "pay_strings.xml" {
		t.Errorf("field download name = %q", d.Name)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, created.ID); !IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestClientValidationError(t *testing.T) {
	c := newServer(t)

	_, err := c.Create(context.Background(), v1.CreateFeatureInput{Name: "x", Version: "1", Date: "d"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "at least one field is required" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewLingoClient(srv.URL, time.Second).Versions(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "Bad Gateway" {
		t.Errorf("got %v", err)
	}
}
