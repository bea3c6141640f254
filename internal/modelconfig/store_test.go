package modelconfig

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/pitchside/prediction-api/internal/models"
	"github.com/pitchside/prediction-api/internal/probability"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.json")
	s, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNewBootstrapsDefault(t *testing.T) {
	s := newTestStore(t)

	active := s.GetActive()
	if active == nil {
		t.Fatal("expected a bootstrap active configuration")
	}
	if active.Version != DefaultVersion {
		t.Errorf("active version = %q, want %q", active.Version, DefaultVersion)
	}
	if !active.IsActive {
		t.Error("bootstrap configuration not flagged active")
	}
	if active.ModelWeights != models.DefaultModelWeights() {
		t.Errorf("bootstrap weights = %+v, want defaults", active.ModelWeights)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")

	s, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(models.ModelConfigurationCreate{Version: "2.0", Description: "tuned", IsActive: true}); err != nil {
		t.Fatal(err)
	}

	// A fresh store over the same file must see the same state.
	s2, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if got := s2.GetActive(); got == nil || got.Version != "2.0" {
		t.Fatalf("reloaded active = %+v, want version 2.0", got)
	}
	if got := s2.GetByVersion(DefaultVersion); got == nil || got.IsActive {
		t.Fatalf("reloaded 1.0.0 = %+v, want present and inactive", got)
	}

	// The persisted document carries the metadata header.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Metadata struct {
			TotalConfigurations int `json:"total_configurations"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Metadata.TotalConfigurations != 2 {
		t.Errorf("metadata total = %d, want 2", doc.Metadata.TotalConfigurations)
	}
}

func TestCreate(t *testing.T) {
	s := newTestStore(t)

	weights := models.DefaultModelWeights()
	weights.HomeAdvantage = 0.4

	cfg, err := s.Create(models.ModelConfigurationCreate{
		Version:      "  2.0  ",
		ModelWeights: &weights,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if cfg.Version != "2.0" {
		t.Errorf("version not trimmed: %q", cfg.Version)
	}
	if cfg.ModelWeights.HomeAdvantage != 0.4 {
		t.Errorf("HomeAdvantage = %v, want 0.4", cfg.ModelWeights.HomeAdvantage)
	}
	// Unset sub-objects fall back to defaults.
	if cfg.Thresholds != models.DefaultThresholds() {
		t.Errorf("Thresholds = %+v, want defaults", cfg.Thresholds)
	}

	// Activation deactivated the previous active record.
	if old := s.GetByVersion(DefaultVersion); old == nil || old.IsActive {
		t.Errorf("previous active = %+v, want deactivated", old)
	}
	if active := s.GetActive(); active.Version != "2.0" {
		t.Errorf("active = %q, want 2.0", active.Version)
	}
}

func TestCreateDuplicate(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(models.ModelConfigurationCreate{Version: DefaultVersion}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate create: got %v, want ErrConflict", err)
	}
}

func TestCreateEmptyVersion(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(models.ModelConfigurationCreate{Version: "   "}); !errors.Is(err, probability.ErrInvalidArgument) {
		t.Errorf("blank version: got %v, want ErrInvalidArgument", err)
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	s := newTestStore(t)

	before := s.GetByVersion(DefaultVersion)

	desc := "retuned"
	updated, err := s.Update(DefaultVersion, models.ModelConfigurationPatch{Description: &desc})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Description != "retuned" {
		t.Errorf("Description = %q, want %q", updated.Description, "retuned")
	}
	// Untouched sub-objects survive the patch.
	if updated.ModelWeights != before.ModelWeights {
		t.Errorf("weights changed by unrelated patch: %+v", updated.ModelWeights)
	}
	if updated.IsActive != before.IsActive {
		t.Errorf("IsActive changed by unrelated patch")
	}
	if !updated.UpdatedAt.After(before.UpdatedAt) && !updated.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", before.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdateDeactivateExplicit(t *testing.T) {
	// A present-and-false is_active must deactivate, unlike an absent one.
	s := newTestStore(t)

	inactive := false
	updated, err := s.Update(DefaultVersion, models.ModelConfigurationPatch{IsActive: &inactive})
	if err != nil {
		t.Fatal(err)
	}
	if updated.IsActive {
		t.Error("explicit is_active=false did not deactivate")
	}
}

func TestUpdateRename(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(models.ModelConfigurationCreate{Version: "2.0"}); err != nil {
		t.Fatal(err)
	}

	newVersion := "2.1"
	if _, err := s.Update("2.0", models.ModelConfigurationPatch{Version: &newVersion}); err != nil {
		t.Fatalf("rename error = %v", err)
	}
	if s.GetByVersion("2.0") != nil {
		t.Error("old version still present after rename")
	}
	if s.GetByVersion("2.1") == nil {
		t.Error("new version absent after rename")
	}

	// Renaming onto an existing key is rejected.
	taken := DefaultVersion
	if _, err := s.Update("2.1", models.ModelConfigurationPatch{Version: &taken}); !errors.Is(err, ErrConflict) {
		t.Errorf("rename onto existing: got %v, want ErrConflict", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Update("9.9", models.ModelConfigurationPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	// Sole remaining configuration is protected.
	if _, err := s.Delete(DefaultVersion); !errors.Is(err, ErrConflict) {
		t.Errorf("delete last: got %v, want ErrConflict", err)
	}

	if _, err := s.Create(models.ModelConfigurationCreate{Version: "2.0"}); err != nil {
		t.Fatal(err)
	}

	ok, err := s.Delete("2.0")
	if err != nil || !ok {
		t.Fatalf("Delete() = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = s.Delete("missing")
	if err != nil || ok {
		t.Fatalf("Delete(missing) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestActivate(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Create(models.ModelConfigurationCreate{Version: "2.0"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := s.Activate("2.0")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if !cfg.IsActive {
		t.Error("activated configuration not flagged active")
	}

	// Exactly one active across the store.
	activeCount := 0
	for _, c := range s.ListAll() {
		if c.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("active count = %d, want 1", activeCount)
	}

	if _, err := s.Activate("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestGetActiveFallback(t *testing.T) {
	// No record flagged active: fall back to the greatest version string.
	s := newTestStore(t)
	if _, err := s.Create(models.ModelConfigurationCreate{Version: "2.0"}); err != nil {
		t.Fatal(err)
	}
	inactive := false
	if _, err := s.Update(DefaultVersion, models.ModelConfigurationPatch{IsActive: &inactive}); err != nil {
		t.Fatal(err)
	}

	active := s.GetActive()
	if active == nil || active.Version != "2.0" {
		t.Errorf("fallback active = %+v, want version 2.0", active)
	}
}

func TestValidate(t *testing.T) {
	cfg := &models.ModelConfiguration{
		Version:      "1.0.0",
		ModelWeights: models.DefaultModelWeights(),
		Thresholds:   models.DefaultThresholds(),
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("valid config produced errors: %v", errs)
	}

	cfg.Thresholds.MinGoalsForAvg = cfg.Thresholds.MaxGoalsForAvg
	if errs := Validate(cfg); len(errs) == 0 {
		t.Error("equal min/max goals-for thresholds not reported")
	}

	cfg.ModelWeights.GoalsForWeight = 0.6
	cfg.ModelWeights.GoalsAgainstWeight = 0.6
	errs := Validate(cfg)
	if len(errs) < 2 {
		t.Errorf("expected weight-sum and threshold errors, got %v", errs)
	}
}

func TestReturnedCopiesAreDetached(t *testing.T) {
	s := newTestStore(t)

	got := s.GetActive()
	got.Description = "mutated by caller"
	got.IsActive = false

	again := s.GetActive()
	if again == nil || again.Description == "mutated by caller" || !again.IsActive {
		t.Error("caller mutation leaked into store state")
	}
}

func TestConcurrentActivate(t *testing.T) {
	// Two racing activations must leave exactly one active configuration,
	// never two and never zero.
	s := newTestStore(t)
	if _, err := s.Create(models.ModelConfigurationCreate{Version: "2.0"}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		version := DefaultVersion
		if i%2 == 0 {
			version = "2.0"
		}
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			if _, err := s.Activate(v); err != nil {
				t.Errorf("Activate(%s) error = %v", v, err)
			}
		}(version)
	}
	wg.Wait()

	activeCount := 0
	for _, c := range s.ListAll() {
		if c.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("active count after concurrent activations = %d, want 1", activeCount)
	}
}
