package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/atomesh/internal/config"
)

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNameTaken is returned when a preset name is already in use.
	ErrNameTaken = errors.New("name already in use")
)

// Preset is a named set of tunables.
type Preset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Tunables  config.Tunables `json:"tunables"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PresetRepository provides CRUD operations for presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

// Create inserts a new preset. An empty ID is filled with a fresh UUID.
func (r *PresetRepository) Create(p *Preset) error {
	if p.Name == "" {
		return errors.New("preset name is required")
	}
	if err := p.Tunables.Validate(); err != nil {
		return err
	}
	data, err := config.MarshalTunables(p.Tunables)
	if err != nil {
		return err
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = r.db.Exec(
		`INSERT INTO presets (id, name, config, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(data), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("preset %q: %w", p.Name, ErrNameTaken)
		}
		return err
	}

	return nil
}

// GetByID retrieves a preset by its ID.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	return r.get(`SELECT id, name, config, created_at, updated_at FROM presets WHERE id = ?`, id)
}

// GetByName retrieves a preset by its name.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	return r.get(`SELECT id, name, config, created_at, updated_at FROM presets WHERE name = ?`, name)
}

func (r *PresetRepository) get(query, arg string) (*Preset, error) {
	p, err := scanPreset(r.db.QueryRow(query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List retrieves all presets ordered by name.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(
		`SELECT id, name, config, created_at, updated_at FROM presets ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presets, nil
}

// Update replaces the name and tunables of an existing preset.
func (r *PresetRepository) Update(p *Preset) error {
	if err := p.Tunables.Validate(); err != nil {
		return err
	}
	data, err := config.MarshalTunables(p.Tunables)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE presets SET name = ?, config = ?, updated_at = ? WHERE id = ?`,
		p.Name, string(data), p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("preset %q: %w", p.Name, ErrNameTaken)
		}
		return err
	}

	return expectOne(result)
}

// Save creates the named preset or overwrites its tunables if it exists.
func (r *PresetRepository) Save(name string, t config.Tunables) (*Preset, error) {
	existing, err := r.GetByName(name)
	switch {
	case errors.Is(err, ErrNotFound):
		p := &Preset{Name: name, Tunables: t}
		if err := r.Create(p); err != nil {
			return nil, err
		}
		return p, nil
	case err != nil:
		return nil, err
	}

	existing.Tunables = t
	if err := r.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a preset by its ID.
func (r *PresetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(row scanner) (*Preset, error) {
	p := &Preset{}
	var data string

	if err := row.Scan(&p.ID, &p.Name, &data, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	t, err := config.UnmarshalTunables([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.ID, err)
	}
	p.Tunables = t
	return p, nil
}

func expectOne(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
