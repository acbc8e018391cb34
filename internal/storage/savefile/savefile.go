// Package savefile persists matches as YAML slot files on local disk.
package savefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// ErrSlotNotFound is returned when a slot has no save file.
var ErrSlotNotFound = errors.New("save slot not found")

// formatVersion is bumped whenever the document layout changes incompatibly.
const formatVersion = 1

var slotFile = regexp.MustCompile(`^save_slot_(\d+)\.yaml$`)

// document is the on-disk layout of a slot.
type document struct {
	Version int              `yaml:"version"`
	MatchID string           `yaml:"match_id,omitempty"`
	Seed    int64            `yaml:"seed"`
	SavedAt time.Time        `yaml:"saved_at"`
	State   *state.GameState `yaml:"state"`
}

// Meta identifies the match a slot belongs to.
type Meta struct {
	MatchID string
	Seed    int64
}

// Snapshot is a loaded slot.
type Snapshot struct {
	Meta
	SavedAt time.Time
	State   *state.GameState
}

// Store reads and writes numbered save slots under one directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first save.
//
// Precondition: dir must be non-empty; logger must be non-nil.
func NewStore(dir string, logger *zap.Logger) *Store {
	if dir == "" {
		panic("savefile.NewStore: dir must not be empty")
	}
	if logger == nil {
		panic("savefile.NewStore: logger must not be nil")
	}
	return &Store{dir: dir, logger: logger}
}

// Path returns the file backing slot.
func (s *Store) Path(slot int) string {
	return filepath.Join(s.dir, fmt.Sprintf("save_slot_%d.yaml", slot))
}

// Save writes gs to slot, replacing any previous save atomically.
//
// Precondition: slot >= 0; gs must be non-nil.
// Postcondition: a later Load(slot) returns a state equal to gs.
func (s *Store) Save(slot int, meta Meta, gs *state.GameState) error {
	if slot < 0 {
		return fmt.Errorf("savefile: invalid slot %d", slot)
	}
	data, err := yaml.Marshal(document{
		Version: formatVersion,
		MatchID: meta.MatchID,
		Seed:    meta.Seed,
		SavedAt: time.Now().UTC(),
		State:   gs,
	})
	if err != nil {
		return fmt.Errorf("savefile: encoding slot %d: %w", slot, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("savefile: creating %s: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".save_slot_*.tmp")
	if err != nil {
		return fmt.Errorf("savefile: writing slot %d: %w", slot, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("savefile: writing slot %d: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("savefile: writing slot %d: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(slot)); err != nil {
		return fmt.Errorf("savefile: writing slot %d: %w", slot, err)
	}

	s.logger.Info("match saved",
		zap.Int("slot", slot),
		zap.String("match_id", meta.MatchID),
		zap.Int("turns", gs.Stats.TurnsPlayed),
	)
	return nil
}

// Load reads slot and validates the restored state.
//
// Postcondition: returns ErrSlotNotFound for an empty slot; any returned
// state has passed Validate.
func (s *Store) Load(slot int) (Snapshot, error) {
	data, err := os.ReadFile(s.Path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("slot %d: %w", slot, ErrSlotNotFound)
		}
		return Snapshot{}, fmt.Errorf("savefile: reading slot %d: %w", slot, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("savefile: decoding slot %d: %w", slot, err)
	}
	if doc.Version != formatVersion {
		return Snapshot{}, fmt.Errorf("savefile: slot %d has format version %d, want %d", slot, doc.Version, formatVersion)
	}
	if doc.State == nil {
		return Snapshot{}, fmt.Errorf("savefile: slot %d has no state", slot)
	}
	if err := doc.State.Config.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("savefile: slot %d: %w", slot, err)
	}
	if err := doc.State.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("savefile: slot %d: %w", slot, err)
	}

	s.logger.Info("match loaded", zap.Int("slot", slot), zap.String("match_id", doc.MatchID))
	return Snapshot{
		Meta:    Meta{MatchID: doc.MatchID, Seed: doc.Seed},
		SavedAt: doc.SavedAt,
		State:   doc.State,
	}, nil
}

// Has reports whether slot holds a save.
func (s *Store) Has(slot int) bool {
	_, err := os.Stat(s.Path(slot))
	return err == nil
}

// Delete removes slot.
//
// Postcondition: returns ErrSlotNotFound if the slot was empty.
func (s *Store) Delete(slot int) error {
	if err := os.Remove(s.Path(slot)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("slot %d: %w", slot, ErrSlotNotFound)
		}
		return fmt.Errorf("savefile: deleting slot %d: %w", slot, err)
	}
	return nil
}

// Slots lists the occupied slots in ascending order.
func (s *Store) Slots() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("savefile: listing %s: %w", s.dir, err)
	}
	var slots []int
	for _, e := range entries {
		m := slotFile.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slots = append(slots, n)
	}
	slices.Sort(slots)
	return slots, nil
}
