package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/atomesh/internal/config"
)

func TestPresetRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Presets()

	tun := config.DefaultTunables()
	tun.ParticleCount = 120
	tun.Cooldown = 1500 * time.Millisecond

	p := &Preset{Name: "slow", Tunables: tun}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID == "" {
		t.Fatal("Create() should assign an ID")
	}

	byID, err := repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if diff := cmp.Diff(tun, byID.Tunables); diff != "" {
		t.Errorf("tunables mismatch (-want +got):\n%s", diff)
	}

	byName, err := repo.GetByName("slow")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName.ID != p.ID {
		t.Errorf("GetByName() ID = %q, want %q", byName.ID, p.ID)
	}
}

func TestPresetRepository_CreateValidates(t *testing.T) {
	repo := newTestStore(t).Presets()

	if err := repo.Create(&Preset{Tunables: config.DefaultTunables()}); err == nil {
		t.Error("Create() without a name should fail")
	}

	bad := config.DefaultTunables()
	bad.ParticleCount = 0
	if err := repo.Create(&Preset{Name: "bad", Tunables: bad}); err == nil {
		t.Error("Create() with invalid tunables should fail")
	}
}

func TestPresetRepository_NameTaken(t *testing.T) {
	repo := newTestStore(t).Presets()

	if err := repo.Create(&Preset{Name: "dup", Tunables: config.DefaultTunables()}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(&Preset{Name: "dup", Tunables: config.DefaultTunables()})
	if !errors.Is(err, ErrNameTaken) {
		t.Errorf("Create() duplicate error = %v, want ErrNameTaken", err)
	}
}

func TestPresetRepository_NotFound(t *testing.T) {
	repo := newTestStore(t).Presets()

	if _, err := repo.GetByID("missing"); err != ErrNotFound {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByName("missing"); err != ErrNotFound {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("missing"); err != ErrNotFound {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(&Preset{ID: "missing", Name: "x", Tunables: config.DefaultTunables()}); err != ErrNotFound {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestPresetRepository_ListAndDelete(t *testing.T) {
	repo := newTestStore(t).Presets()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := repo.Create(&Preset{Name: name, Tunables: config.DefaultTunables()}); err != nil {
			t.Fatalf("Create(%s) error = %v", name, err)
		}
	}

	presets, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, p := range presets {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}

	if err := repo.Delete(presets[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	presets, err = repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(presets) != 2 {
		t.Errorf("List() after delete len = %d, want 2", len(presets))
	}
}

func TestPresetRepository_Save(t *testing.T) {
	repo := newTestStore(t).Presets()

	first, err := repo.Save("mine", config.DefaultTunables())
	if err != nil {
		t.Fatalf("Save() create error = %v", err)
	}

	tun := config.DefaultTunables()
	tun.Friction = 0.9
	second, err := repo.Save("mine", tun)
	if err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Save() overwrite changed ID %q -> %q", first.ID, second.ID)
	}

	got, err := repo.GetByName("mine")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got.Tunables.Friction != 0.9 {
		t.Errorf("Friction = %v, want 0.9", got.Tunables.Friction)
	}
}
