package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"swapCore/internal/model"
)

// SnapshotStore persists pool snapshots so a restarted process can reload its
// pools. A nil or empty-path store is a no-op.
type SnapshotStore struct {
	Path string
}

type snapshotFile struct {
	Pools     []model.PoolInfo `json:"pools"`
	UpdatedAt string           `json:"updated_at"`
}

// Load reads the snapshot file. The second return reports whether a snapshot
// existed.
func (s *SnapshotStore) Load() ([]model.PoolInfo, bool, error) {
	if s == nil || s.Path == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, false, fmt.Errorf("parse snapshot: %w", err)
	}
	return file.Pools, true, nil
}

// Save writes the snapshot atomically via a temp file and rename.
func (s *SnapshotStore) Save(infos []model.PoolInfo) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	file := snapshotFile{
		Pools:     infos,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
