package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/harrisonrobin/tickbox/pkg/config"
)

const indexFile = "remote.json"

// RemoteIndex maps local task ids to Google Tasks ids.
type RemoteIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

// NewRemoteIndex opens the index in the config directory.
func NewRemoteIndex() (*RemoteIndex, error) {
	dir, err := config.GetXdgHome()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, indexFile))
}

// Open loads the index at path; a missing file gives an empty index.
func Open(path string) (*RemoteIndex, error) {
	idx := &RemoteIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func (idx *RemoteIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&idx.Mappings); err != nil {
		return err
	}
	if idx.Mappings == nil {
		idx.Mappings = make(map[string]string)
	}
	return nil
}

func (idx *RemoteIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.dirty {
		return nil
	}

	dir := filepath.Dir(idx.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *RemoteIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[taskID]
}

func (idx *RemoteIndex) Set(taskID, remoteID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[taskID] != remoteID {
		idx.Mappings[taskID] = remoteID
		idx.dirty = true
	}
}

func (idx *RemoteIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[taskID]; exists {
		delete(idx.Mappings, taskID)
		idx.dirty = true
	}
}

// TaskIDs returns every local id that has a remote counterpart.
func (idx *RemoteIndex) TaskIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.Mappings))
	for id := range idx.Mappings {
		ids = append(ids, id)
	}
	return ids
}
