// Package capture persists raw FreeD frames for later inspection.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

var (
	ErrNotFound   = errors.New("capture: frame not found")
	ErrEmptyFrame = errors.New("capture: empty frame")
)

// Frame keys are the prefix followed by the 20 byte KSUID. Ids handed out by
// a Store strictly increase, so key order is capture order.
var keyPrefix = []byte("frame/")

// Entry is one captured frame.
type Entry struct {
	ID       ksuid.KSUID
	Captured time.Time
	Frame    []byte
}

// Store is a pebble-backed frame log.
type Store struct {
	db *pebble.DB

	mu   sync.Mutex
	last ksuid.KSUID // newest id written, guarded by mu
}

// Open opens or creates a capture store in dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open capture store: %w", err)
	}
	s := &Store{db: db}
	if s.last, err = s.newestID(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) iter() (*pebble.Iterator, error) {
	upper := append([]byte(nil), keyPrefix...)
	upper[len(upper)-1]++

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate frames: %w", err)
	}
	return iter, nil
}

// newestID returns the largest stored id, or ksuid.Nil for an empty store.
func (s *Store) newestID() (ksuid.KSUID, error) {
	iter, err := s.iter()
	if err != nil {
		return ksuid.Nil, err
	}
	defer iter.Close()

	if !iter.Last() {
		return ksuid.Nil, iter.Error()
	}
	id, err := ksuid.FromBytes(iter.Key()[len(keyPrefix):])
	if err != nil {
		return ksuid.Nil, fmt.Errorf("corrupt frame key: %w", err)
	}
	return id, nil
}

// nextID returns a fresh id greater than every id written before. Within one
// second, or when the clock steps back, it continues from the last id.
func (s *Store) nextID() ksuid.KSUID {
	id := ksuid.New()
	if ksuid.Compare(id, s.last) <= 0 {
		id = s.last.Next()
	}
	return id
}

func frameKey(id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(id))
	key = append(key, keyPrefix...)
	return append(key, id.Bytes()...)
}

// Put stores a copy of frame and returns its id.
func (s *Store) Put(frame []byte) (ksuid.KSUID, error) {
	if len(frame) == 0 {
		return ksuid.Nil, ErrEmptyFrame
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID()
	if err := s.db.Set(frameKey(id), frame, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to store frame: %w", err)
	}
	s.last = id
	return id, nil
}

// Get returns the frame stored under id.
func (s *Store) Get(id ksuid.KSUID) (*Entry, error) {
	data, closer, err := s.db.Get(frameKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	defer closer.Close()

	return &Entry{
		ID:       id,
		Captured: id.Time(),
		Frame:    append([]byte(nil), data...),
	}, nil
}

// List returns up to limit frames in capture order, oldest first. A limit
// of zero or less returns every frame.
func (s *Store) List(limit int) ([]Entry, error) {
	iter, err := s.iter()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(entries) >= limit {
			break
		}
		id, err := ksuid.FromBytes(iter.Key()[len(keyPrefix):])
		if err != nil {
			return nil, fmt.Errorf("corrupt frame key: %w", err)
		}
		entries = append(entries, Entry{
			ID:       id,
			Captured: id.Time(),
			Frame:    append([]byte(nil), iter.Value()...),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate frames: %w", err)
	}
	return entries, nil
}

// Delete removes the frame stored under id.
func (s *Store) Delete(id ksuid.KSUID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.db.Delete(frameKey(id), pebble.Sync)
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}
