package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the token pair in a JSON file, scoped to the local user
// account the way browser localStorage is scoped to a browser profile.
type FileStore struct {
	path string
	log  zerolog.Logger
	lock sync.RWMutex
}

// NewFileStore creates a store backed by the file at path. The file is not
// created until the first Set.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Get reads the stored pair. Any read or decode failure degrades to the zero
// Pair: an unreadable store means no session.
func (fs *FileStore) Get() Pair {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.log.Warn().Err(err).Str("path", fs.path).Msg("token store unreadable, treating as empty")
		}
		return Pair{}
	}

	var pair Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		fs.log.Warn().Err(err).Str("path", fs.path).Msg("token store corrupt, treating as empty")
		return Pair{}
	}
	return pair
}

// Set replaces both tokens atomically via a temp-file rename.
func (fs *FileStore) Set(accessToken, refreshToken string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	data, err := json.Marshal(Pair{AccessToken: accessToken, RefreshToken: refreshToken})
	if err != nil {
		return errors.Wrap(err, "[FileStore.Set] marshal")
	}

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "[FileStore.Set] mkdir")
		}
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStore.Set] write")
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.Set] rename")
	}
	return nil
}

// Clear removes the backing file. A missing file is not an error.
func (fs *FileStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] remove")
	}
	return nil
}
