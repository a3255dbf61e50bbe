package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupResult describes a completed settings backup.
type BackupResult struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
}

// Backup writes a snapshot of the settings database into backupDir and
// returns where it landed. Snapshots are full, not incremental.
func (s *Store) Backup(backupDir string) (*BackupResult, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02-150405")
	outputPath := filepath.Join(backupDir, fmt.Sprintf("settings-%s.bak", timestamp))

	start := time.Now()

	file, err := os.Create(outputPath) //#nosec G304 -- path is built from the configured backup dir
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}

	if _, err := s.db.Backup(file, 0); err != nil {
		file.Close()
		os.Remove(outputPath)
		return nil, fmt.Errorf("write backup: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close backup file: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	result := &BackupResult{
		Path:     outputPath,
		Size:     info.Size(),
		Duration: time.Since(start),
	}

	if s.logger != nil {
		s.logger.Info("settings backup complete",
			"path", result.Path,
			"size", result.Size,
			"duration", result.Duration,
		)
	}

	return result, nil
}
