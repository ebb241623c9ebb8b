package episodemap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/gofrs/flock"
)

// MarshalJSON encodes the map as {"o2e": {...}, "se2e": {...}} with
// original indices in ascending numeric order.
func (m *IndexMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"o2e":{`)
	originals := make([]int, 0, len(m.o2e))
	for o := range m.o2e {
		originals = append(originals, o)
	}
	slices.Sort(originals)
	for i, o := range originals {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":%d`, o, m.o2e[o])
	}

	buf.WriteString(`},"se2e":{`)
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, `:%d`, m.se2e[k])
	}
	buf.WriteString(`}}`)

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (m *IndexMap) UnmarshalJSON(data []byte) error {
	var raw struct {
		O2E  map[string]int `json:"o2e"`
		SE2E map[string]int `json:"se2e"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o2e := make(map[int]int, len(raw.O2E))
	for k, v := range raw.O2E {
		o, err := strconv.Atoi(k)
		if err != nil || o < 0 {
			return fmt.Errorf("o2e: invalid original index %q", k)
		}
		o2e[o] = v
	}

	se2e := make(map[Key]int, len(raw.SE2E))
	for k, v := range raw.SE2E {
		if !Key(k).Valid() {
			return fmt.Errorf("se2e: invalid episode key %q", k)
		}
		se2e[Key(k)] = v
	}

	m.o2e = o2e
	m.se2e = se2e
	return nil
}

// WriteFile stores m at path as indented JSON. The file is replaced
// atomically while holding an advisory lock on path + ".lock", which is
// removed again once the write is done.
func WriteFile(path string, m *IndexMap) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	data = append(data, '\n')

	unlock, err := lockPath(path + ".lock")
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// lockPath takes an exclusive lock on name. The returned func deletes name
// and releases the lock. A lock won on a file another writer already
// deleted is dropped and taken again.
func lockPath(name string) (func(), error) {
	for {
		lock := flock.New(name)
		if err := lock.Lock(); err != nil {
			return nil, err
		}

		onDisk, err := os.Stat(name)
		if err == nil {
			var locked os.FileInfo
			locked, err = lock.Stat()
			if err == nil && os.SameFile(onDisk, locked) {
				return func() {
					os.Remove(name)
					lock.Close()
				}, nil
			}
		}
		lock.Close()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
}

// ReadFile loads an index map written by WriteFile.
func ReadFile(path string) (*IndexMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := &IndexMap{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", path, err)
	}
	return m, nil
}
