// Package nvstore keeps the small amount of state the station needs
// across restarts.
package nvstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
)

// Store hands out the DCC-A session counter.
type Store interface {
	// Next increments the stored counter and returns the new value. The
	// counter wraps from 255 to 0.
	Next() (uint8, error)
}

type fileData struct {
	Session uint8 `toml:"session"`
}

// File stores the counter in a TOML file.
type File struct {
	Path string

	lock sync.Mutex
}

// NewFile creates a File store.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the counter. A missing file reads as zero.
func (f *File) Load() (uint8, error) {
	var data fileData
	if _, err := toml.DecodeFile(f.Path, &data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("load %s: %w", f.Path, err)
	}
	return data.Session, nil
}

// Next implements Store.
func (f *File) Next() (uint8, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	cur, err := f.Load()
	if err != nil {
		return 0, err
	}
	data := fileData{Session: cur + 1}
	if err := f.save(&data); err != nil {
		return 0, err
	}
	glog.V(2).Infof("nvstore: session %d", data.Session)
	return data.Session, nil
}

// save replaces the file atomically.
func (f *File) save(data *fileData) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	defer os.Remove(tmp.Name())
	if err := toml.NewEncoder(tmp).Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("save %s: %w", f.Path, err)
	}
	return nil
}

// Memory keeps the counter in memory.
type Memory struct {
	Session uint8

	lock sync.Mutex
}

// Next implements Store.
func (m *Memory) Next() (uint8, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.Session++
	return m.Session, nil
}
