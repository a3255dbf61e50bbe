// Package settings persists per-folder view preferences in a Badger
// database. Preferences survive restarts so a directory reopens the way
// it was left.
package settings

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/paneapp/pane-server/internal/browse"
	domainerrors "github.com/paneapp/pane-server/internal/errors"
)

const folderPrefix = "folder:"

// FolderSettings holds the remembered view state for one directory.
type FolderSettings struct {
	Path         string          `json:"path"`
	SortBy       string          `json:"sortBy"`       // "name", "size", "kind", "modified"
	SortOrder    string          `json:"sortOrder"`    // "asc", "desc"
	ShowHidden   bool            `json:"showHidden"`   // Show dotfiles
	ShowInGroups bool            `json:"showInGroups"` // Group rows in the view
	DetailsView  bool            `json:"detailsView"`  // Multi-column details view
	Columns      []browse.Column `json:"columns,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Defaults returns the settings used for a directory that has none saved.
func Defaults(path string) *FolderSettings {
	return &FolderSettings{
		Path:        path,
		SortBy:      "name",
		SortOrder:   "asc",
		DetailsView: true,
		Columns: []browse.Column{
			{Type: browse.ColumnName, Checked: true},
			{Type: browse.ColumnSize, Checked: true},
			{Type: browse.ColumnModified, Checked: true},
			{Type: browse.ColumnKind, Checked: false},
			{Type: browse.ColumnAttributes, Checked: false},
		},
	}
}

// Store persists folder settings in Badger.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the settings database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes survive crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("settings database opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing settings database")
	}
	return s.db.Close()
}

// Get returns the saved settings for a directory, or defaults when none
// have been saved yet.
func (s *Store) Get(path string) (*FolderSettings, error) {
	var fs FolderSettings
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &fs)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Defaults(path), nil
	}
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInternal, "load settings for %q", path)
	}
	return &fs, nil
}

// Put saves the settings for a directory.
func (s *Store) Put(fs *FolderSettings) error {
	if fs.Path == "" {
		return domainerrors.Validation("settings path is required")
	}
	fs.UpdatedAt = time.Now()

	data, err := json.Marshal(fs)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(fs.Path), data)
	})
}

// Delete removes the saved settings for a directory. Removing settings
// that don't exist is not an error.
func (s *Store) Delete(path string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(path))
	})
}

// List returns all directories with saved settings.
func (s *Store) List() ([]*FolderSettings, error) {
	var all []*FolderSettings

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(folderPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var fs FolderSettings
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &fs)
			})
			if err != nil {
				return err
			}
			all = append(all, &fs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	return all, nil
}

func key(path string) []byte {
	// Trailing slashes would split one directory across two keys.
	path = strings.TrimRight(path, "/")
	if path == "" {
		path = "/"
	}
	return []byte(folderPrefix + path)
}
