package store

import (
	"encoding/json"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v3"

	tlog "github.com/shapedtime/torrentmap/internal/log"
)

var _ Store = &Badger{}

const recordRootKey = "/index/"

// Badger stores records as JSON values keyed by info hash.
type Badger struct {
	db *badger.DB
}

// NewBadger opens or creates a badger database in dir.
func NewBadger(dir string) (*Badger, error) {
	l := tlog.Component("index-store")

	opts := badger.DefaultOptions(dir).
		WithLogger(&tlog.Badger{L: l}).
		WithValueLogFileSize(1<<26 - 1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	err = db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		db.Close()
		return nil, err
	}

	return &Badger{db: db}, nil
}

func recordKey(hash string) []byte {
	return []byte(path.Join(recordRootKey, hash))
}

func (s *Badger) Put(r *Record) error {
	h, err := NormalizeHash(r.InfoHash)
	if err != nil {
		return err
	}

	rec := *r
	rec.InfoHash = h

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return txn.Set(recordKey(h), data)
	})
	if err != nil {
		return err
	}

	return s.db.Sync()
}

func (s *Badger) Get(hash string) (*Record, error) {
	h, err := NormalizeHash(hash)
	if err != nil {
		return nil, err
	}

	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get(recordKey(h))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var r Record
	if err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, &r)
	}); err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *Badger) List() ([]*Record, error) {
	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	it := tx.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(recordRootKey)
	var out []*Record
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(func(v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			out = append(out, &r)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(out, func(a, b *Record) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.InfoHash, b.InfoHash)
	})
	return out, nil
}

func (s *Badger) Delete(hash string) (bool, error) {
	h, err := NormalizeHash(hash)
	if err != nil {
		return false, err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	if _, err := tx.Get(recordKey(h)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := tx.Delete(recordKey(h)); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (s *Badger) Count() (int, error) {
	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := tx.NewIterator(opts)
	defer it.Close()

	prefix := []byte(recordRootKey)
	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n, nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}
