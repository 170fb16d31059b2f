package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

const storeFileName = "lifehub.json"

// FileKV keeps every key in a single JSON file, rewritten atomically on each
// PutAll. Reads are served from memory.
type FileKV struct {
	dir string

	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// OpenFile loads dir/lifehub.json, or starts empty if it does not exist yet.
// The directory is created on the first write.
func OpenFile(dir string) (*FileKV, error) {
	kv := &FileKV{dir: dir, data: make(map[string]json.RawMessage)}

	raw, err := os.ReadFile(kv.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return kv, nil
		}
		return nil, fmt.Errorf("reading store: %w", err)
	}
	if err := json.Unmarshal(raw, &kv.data); err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", kv.Path(), err)
	}
	if kv.data == nil {
		kv.data = make(map[string]json.RawMessage)
	}
	return kv, nil
}

// Path returns the full path to the store file.
func (kv *FileKV) Path() string {
	return filepath.Join(kv.dir, storeFileName)
}

// Get returns a copy of the stored value.
func (kv *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// PutAll merges entries into the store and rewrites the file. Values must be
// valid JSON. On error the in-memory view is left unchanged.
func (kv *FileKV) PutAll(_ context.Context, entries map[string][]byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	next := maps.Clone(kv.data)
	for k, v := range entries {
		if !json.Valid(v) {
			return fmt.Errorf("value for %s is not valid JSON", k)
		}
		next[k] = append(json.RawMessage(nil), v...)
	}

	if err := kv.write(next); err != nil {
		return err
	}
	kv.data = next
	return nil
}

// write replaces the store file using a temp-file-then-rename.
func (kv *FileKV) write(data map[string]json.RawMessage) error {
	if err := os.MkdirAll(kv.dir, 0o700); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(kv.dir, ".lifehub-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, kv.Path()); err != nil {
		return fmt.Errorf("renaming store file: %w", err)
	}
	committed = true
	return nil
}

// Close is a no-op; every PutAll is already on disk.
func (kv *FileKV) Close() error {
	return nil
}
