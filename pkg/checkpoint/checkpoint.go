package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
)

// State is the whole persisted progress record
type State struct {
	CompletedPlatforms []string       `json:"completed_platforms"`
	LastOffset         map[string]int `json:"last_offset"`
}

// Entry is the progress of a single platform
type Entry struct {
	LastOffset int
	Completed  bool
}

// NewState returns an empty progress record
func NewState() *State {
	return &State{
		CompletedPlatforms: []string{},
		LastOffset:         make(map[string]int),
	}
}

// Entry returns the progress recorded for platform
func (s *State) Entry(platform string) Entry {
	return Entry{
		LastOffset: s.LastOffset[platform],
		Completed:  s.IsCompleted(platform),
	}
}

// IsCompleted reports whether platform has been fully processed
func (s *State) IsCompleted(platform string) bool {
	return slices.Contains(s.CompletedPlatforms, platform)
}

func (s *State) markCompleted(platform string) {
	if !s.IsCompleted(platform) {
		s.CompletedPlatforms = append(s.CompletedPlatforms, platform)
	}
}

// Manager reads and writes the progress file
type Manager struct {
	path   string
	logger logger.Logger
}

// NewManager creates a checkpoint manager for the file at path
func NewManager(path string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		path:   path,
		logger: log.WithField("checkpoint", path),
	}
}

// Path returns the checkpoint file location
func (m *Manager) Path() string {
	return m.path
}

// LoadState reads the full progress record. A missing or unreadable file
// yields an empty record so a damaged checkpoint never blocks a run.
func (m *Manager) LoadState() *State {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.warnCorrupt(errors.Wrap(errors.ErrorTypeCorruptCheckpoint, err, "read checkpoint"))
		}
		return NewState()
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		m.warnCorrupt(errors.Wrap(errors.ErrorTypeCorruptCheckpoint, err, "decode checkpoint"))
		return NewState()
	}

	// A file holding "null" fields still decodes
	if state.LastOffset == nil {
		state.LastOffset = make(map[string]int)
	}
	if state.CompletedPlatforms == nil {
		state.CompletedPlatforms = []string{}
	}

	for platform, offset := range state.LastOffset {
		if offset < 0 {
			m.warnCorrupt(errors.New(errors.ErrorTypeCorruptCheckpoint, 0, "negative offset %d for %s", offset, platform))
			return NewState()
		}
	}

	return state
}

func (m *Manager) warnCorrupt(err error) {
	m.logger.WithError(err).WarnWithFields("Checkpoint unusable, starting fresh", map[string]interface{}{
		"error_type": string(errors.ErrorTypeCorruptCheckpoint),
	})
}

// Load returns the recorded progress for platform
func (m *Manager) Load(platform string) Entry {
	return m.LoadState().Entry(platform)
}

// Save records offset for platform and optionally marks it completed. The
// full record is re-read and rewritten so other platforms are preserved.
func (m *Manager) Save(platform string, offset int, completed bool) error {
	state := m.LoadState()
	state.LastOffset[platform] = offset
	if completed {
		state.markCompleted(platform)
	}

	if err := m.write(state); err != nil {
		return err
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"platform":  platform,
		"offset":    offset,
		"completed": completed,
	})
	return nil
}

// Reset forgets the progress of the given platforms, or of every platform
// when none are named
func (m *Manager) Reset(platforms ...string) error {
	if len(platforms) == 0 {
		return m.Delete()
	}

	state := m.LoadState()
	for _, p := range platforms {
		delete(state.LastOffset, p)
		state.CompletedPlatforms = slices.DeleteFunc(state.CompletedPlatforms, func(c string) bool {
			return c == p
		})
	}

	if err := m.write(state); err != nil {
		return err
	}

	m.logger.InfoWithFields("Checkpoint reset", map[string]interface{}{
		"platforms": platforms,
	})
	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// write replaces the checkpoint file atomically
func (m *Manager) write(state *State) error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
	}

	tempPath := m.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(state); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	return nil
}
