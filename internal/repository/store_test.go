package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	v1 "lingoflow/pkg/api/v1"
)

// steppingClock makes every nowFunc call one second later than the last.
func steppingClock(t *testing.T) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	orig := nowFunc
	nowFunc = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	t.Cleanup(func() { nowFunc = orig })
}

func loginInput() v1.CreateFeatureInput {
	return v1.CreateFeatureInput{
		Name:    "Login",
		Version: "1.0.0",
		Date:    "2024-01-01",
		Fields: []v1.Field{
			{Key: "btn_submit", Name: "Submit", Translations: v1.Translations{"en": "Submit"}},
		},
	}
}

func strPtr(s string) *string { return &s }

func assertSameFeature(t *testing.T, got, want *v1.Feature) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Version != want.Version || got.Date != want.Date {
		t.Fatalf("feature mismatch\n got: %+v\nwant: %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps mismatch: got %v/%v want %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
	if len(got.Fields) != len(want.Fields) {
		t.Fatalf("field count = %d, want %d", len(got.Fields), len(want.Fields))
	}
	for i := range want.Fields {
		g, w := got.Fields[i], want.Fields[i]
		if g.ID != w.ID || g.Key != w.Key || g.Name != w.Name {
			t.Errorf("field %d mismatch: got %+v want %+v", i, g, w)
		}
		if len(g.Translations) != len(w.Translations) {
			t.Errorf("field %d translations = %v, want %v", i, g.Translations, w.Translations)
			continue
		}
		for code, v := range w.Translations {
			if g.Translations[code] != v {
				t.Errorf("field %d %s = %q, want %q", i, code, g.Translations[code], v)
			}
		}
	}
}

// runContract exercises the behaviour every FeatureStore must share.
func runContract(t *testing.T, newStore func(t *testing.T) FeatureStore) {
	ctx := context.Background()

	t.Run("CreateAssignsIDsAndTimestamps", func(t *testing.T) {
		s := newStore(t)
		in := loginInput()
		in.Fields = append(in.Fields, v1.Field{ID: "keep-me", Key: "title", Name: "Title"})

		a, err := s.Create(ctx, in)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		b, err := s.Create(ctx, loginInput())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if a.ID == "" || b.ID == "" || a.ID == b.ID {
			t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
		}
		if !a.CreatedAt.Equal(a.UpdatedAt) {
			t.Errorf("createdAt %v != updatedAt %v", a.CreatedAt, a.UpdatedAt)
		}
		if a.Fields[0].ID == "" {
			t.Error("field id not generated")
		}
		if a.Fields[1].ID != "keep-me" {
			t.Errorf("provided field id replaced: %q", a.Fields[1].ID)
		}
	})

	t.Run("CreateValidation", func(t *testing.T) {
		s := newStore(t)
		tests := []struct {
			name  string
			mod   func(*v1.CreateFeatureInput)
			field string
		}{
			{"blank name", func(in *v1.CreateFeatureInput) { in.Name = "  " }, "name"},
			{"empty version", func(in *v1.CreateFeatureInput) { in.Version = "" }, "version"},
			{"blank date", func(in *v1.CreateFeatureInput) { in.Date = "\t" }, "date"},
			{"no fields", func(in *v1.CreateFeatureInput) { in.Fields = nil }, "fields"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := loginInput()
				tt.mod(&in)
				_, err := s.Create(ctx, in)
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Field != tt.field {
					t.Errorf("Field = %q, want %q", verr.Field, tt.field)
				}
			})
		}

		all, err := s.ListAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 0 {
			t.Errorf("invalid creates persisted %d features", len(all))
		}
	})

	t.Run("GetByIDRoundTrip", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, loginInput())
		if err != nil {
			t.Fatal(err)
		}
		got, err := s.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		assertSameFeature(t, got, created)

		if _, err := s.GetByID(ctx, "does-not-exist"); !errors.Is(err, ErrFeatureNotFound) {
			t.Errorf("expected ErrFeatureNotFound, got %v", err)
		}
	})

	t.Run("UpdateWithoutFieldsKeepsFields", func(t *testing.T) {
		steppingClock(t)
		s := newStore(t)
		created, err := s.Create(ctx, loginInput())
		if err != nil {
			t.Fatal(err)
		}

		updated, err := s.Update(ctx, created.ID, v1.UpdateFeatureInput{Name: strPtr("Sign in")})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Name != "Sign in" || updated.Version != "1.0.0" || updated.Date != "2024-01-01" {
			t.Errorf("unexpected merge result %+v", updated)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) {
			t.Errorf("updatedAt not advanced: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("createdAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
		}

		got, err := s.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Fields) != 1 || got.Fields[0].ID != created.Fields[0].ID {
			t.Errorf("fields changed by scalar update: %+v", got.Fields)
		}
	})

	t.Run("UpdateWithFieldsReplaces", func(t *testing.T) {
		s := newStore(t)
		in := loginInput()
		in.Fields = append(in.Fields, v1.Field{Key: "dropped", Name: "Dropped"})
		created, err := s.Create(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		kept := created.Fields[0]
		kept.Translations = v1.Translations{"en": "Send", "zh-CN": "发送"}
		fields := []v1.Field{kept, {Key: "new_key", Name: "New"}}

		updated, err := s.Update(ctx, created.ID, v1.UpdateFeatureInput{Fields: &fields})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(updated.Fields) != 2 {
			t.Fatalf("expected 2 fields, got %d", len(updated.Fields))
		}
		if updated.Fields[0].ID != kept.ID {
			t.Errorf("existing field id changed: %q -> %q", kept.ID, updated.Fields[0].ID)
		}
		if updated.Fields[1].ID == "" || updated.Fields[1].ID == created.Fields[1].ID {
			t.Errorf("new field should get a fresh id, got %q", updated.Fields[1].ID)
		}

		got, err := s.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		assertSameFeature(t, got, updated)
		for _, f := range got.Fields {
			if f.Key == "dropped" {
				t.Error("omitted field survived replacement")
			}
		}
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Update(ctx, "nope", v1.UpdateFeatureInput{Name: strPtr("x")}); !errors.Is(err, ErrFeatureNotFound) {
			t.Errorf("expected ErrFeatureNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		found, err := s.Delete(ctx, "nope")
		if err != nil || found {
			t.Errorf("Delete(missing) = %v, %v; want false, nil", found, err)
		}

		created, err := s.Create(ctx, loginInput())
		if err != nil {
			t.Fatal(err)
		}
		found, err = s.Delete(ctx, created.ID)
		if err != nil || !found {
			t.Fatalf("Delete(existing) = %v, %v; want true, nil", found, err)
		}
		if _, err := s.GetByID(ctx, created.ID); !errors.Is(err, ErrFeatureNotFound) {
			t.Errorf("expected not found after delete, got %v", err)
		}
	})

	t.Run("ListAllMostRecentFirst", func(t *testing.T) {
		steppingClock(t)
		s := newStore(t)
		var ids []string
		for _, name := range []string{"A", "B", "C"} {
			in := loginInput()
			in.Name = name
			f, err := s.Create(ctx, in)
			if err != nil {
				t.Fatal(err)
			}
			ids = append(ids, f.ID)
		}
		if _, err := s.Update(ctx, ids[0], v1.UpdateFeatureInput{Date: strPtr("2024-02-02")}); err != nil {
			t.Fatal(err)
		}

		all, err := s.ListAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		var names []string
		for _, f := range all {
			names = append(names, f.Name)
		}
		want := []string{"A", "C", "B"}
		if len(names) != 3 || names[0] != want[0] || names[1] != want[1] || names[2] != want[2] {
			t.Errorf("order = %v, want %v", names, want)
		}
	})

	t.Run("Search", func(t *testing.T) {
		s := newStore(t)
		login, err := s.Create(ctx, loginInput())
		if err != nil {
			t.Fatal(err)
		}
		_, err = s.Create(ctx, v1.CreateFeatureInput{
			Name: "Checkout", Version: "2.3.1", Date: "2024-03-01",
			Fields: []v1.Field{{Key: "pay_now", Name: "Pay button", Translations: v1.Translations{"zh-CN": "立即付款"}}},
		})
		if err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			query string
			want  []string
		}{
			{"login", []string{"Login"}},
			{"LOG", []string{"Login"}},
			{"2.3", []string{"Checkout"}},
			{"BTN_SUB", []string{"Login"}},
			{"button", []string{"Checkout"}},
			{"付款", []string{"Checkout"}},
			{"submit", []string{"Login"}},
			{"zzz", nil},
		}
		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				got, err := s.Search(ctx, tt.query)
				if err != nil {
					t.Fatal(err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("Search(%q) returned %d features, want %d", tt.query, len(got), len(tt.want))
				}
				for i := range tt.want {
					if got[i].Name != tt.want[i] {
						t.Errorf("Search(%q)[%d] = %q, want %q", tt.query, i, got[i].Name, tt.want[i])
					}
				}
			})
		}
		if login.ID == "" {
			t.Fatal("unexpected empty id")
		}
	})

	t.Run("FieldIDsAreScopedToFeature", func(t *testing.T) {
		s := newStore(t)
		var created []*v1.Feature
		for _, name := range []string{"Login", "Checkout"} {
			in := loginInput()
			in.Name = name
			in.Fields[0].ID = "shared"
			f, err := s.Create(ctx, in)
			if err != nil {
				t.Fatalf("Create %s: %v", name, err)
			}
			created = append(created, f)
		}
		for _, c := range created {
			got, err := s.GetByID(ctx, c.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got.Fields) != 1 || got.Fields[0].ID != "shared" {
				t.Errorf("%s fields = %+v", c.Name, got.Fields)
			}
		}

		fields := []v1.Field{{ID: "shared", Key: "renamed"}}
		if _, err := s.Update(ctx, created[0].ID, v1.UpdateFeatureInput{Fields: &fields}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		other, err := s.GetByID(ctx, created[1].ID)
		if err != nil {
			t.Fatal(err)
		}
		if other.Fields[0].Key != "btn_submit" {
			t.Errorf("update leaked into other feature: %+v", other.Fields)
		}
	})

	t.Run("DuplicateFieldIDWithinFeatureIsRegenerated", func(t *testing.T) {
		s := newStore(t)
		in := loginInput()
		in.Fields = []v1.Field{{ID: "dup", Key: "a"}, {ID: "dup", Key: "b"}}
		f, err := s.Create(ctx, in)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if f.Fields[0].ID != "dup" || f.Fields[1].ID == "dup" || f.Fields[1].ID == "" {
			t.Errorf("field ids = %q, %q", f.Fields[0].ID, f.Fields[1].ID)
		}
		got, err := s.GetByID(ctx, f.ID)
		if err != nil {
			t.Fatal(err)
		}
		assertSameFeature(t, got, f)
	})

	t.Run("TranslationCodesAreCanonical", func(t *testing.T) {
		s := newStore(t)
		in := loginInput()
		in.Fields[0].Translations = v1.Translations{"EN": "Submit", "zh-cn": "提交", "zh_TW": "提交", "fr": "Soumettre"}
		f, err := s.Create(ctx, in)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := s.GetByID(ctx, f.ID)
		if err != nil {
			t.Fatal(err)
		}
		want := v1.Translations{"en": "Submit", "zh-CN": "提交", "zh-TW": "提交", "fr": "Soumettre"}
		tr := got.Fields[0].Translations
		if len(tr) != len(want) {
			t.Fatalf("translations = %v, want %v", tr, want)
		}
		for code, v := range want {
			if tr[code] != v {
				t.Errorf("%s = %q, want %q", code, tr[code], v)
			}
		}
	})
}

func TestFileStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) FeatureStore {
		return NewFileStore(FileOptions{Path: filepath.Join(t.TempDir(), "data", "features.json")})
	})
}

func TestCachedStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) FeatureStore {
		cs, err := NewCachedStore(NewFileStore(FileOptions{Path: filepath.Join(t.TempDir(), "features.json")}), 16)
		if err != nil {
			t.Fatal(err)
		}
		return cs
	})
}

func TestValidateCreate_OK(t *testing.T) {
	if err := ValidateCreate(loginInput()); err != nil {
		t.Errorf("expected valid input, got %v", err)
	}
}

func TestCanonicalTranslations_ExactSpellingWins(t *testing.T) {
	tests := []struct {
		name string
		in   v1.Translations
		want string
	}{
		{"exact beats alias", v1.Translations{"zh-CN": "exact", "zh-cn": "alias"}, "exact"},
		{"alias fills empty exact", v1.Translations{"zh-CN": "", "zh_cn": "alias"}, "alias"},
		{"empty alias keeps exact", v1.Translations{"zh-CN": "exact", "zh-cn": ""}, "exact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := canonicalTranslations(tt.in)
			if len(got) != 1 || got["zh-CN"] != tt.want {
				t.Errorf("got %v, want zh-CN=%q", got, tt.want)
			}
		})
	}
}
