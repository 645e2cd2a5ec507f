// Package docstore implements the guarded read-modify-write primitive the
// contract ledgers are built on.
//
// Each Store guards exactly one JSON document with one mutex: the lock is
// held across deserialization, mutation, and serialization, so every update
// is a serialized all-or-nothing transaction against that document. Stores
// for different documents are independent and may be written concurrently.
// Locking is in-process only; two processes sharing a contracts directory
// can still race each other.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorruptDocument marks a document that exists on disk but does not parse
// into its expected shape. This is fatal: it indicates a storage-layer
// problem no retry will fix.
var ErrCorruptDocument = errors.New("corrupt contract document")

// Store guards a single persistent JSON document of type T.
type Store[T any] struct {
	path string
	mu   sync.Mutex
	init func() T
}

// New creates a store for the document at dir/file. init produces the empty
// default written on first access when no file exists yet.
func New[T any](dir, file string, init func() T) *Store[T] {
	return &Store[T]{path: filepath.Join(dir, file), init: init}
}

// Path returns the location of the backing file.
func (s *Store[T]) Path() string { return s.path }

// View runs fn with a fresh copy of the document under the store lock.
// Mutations made by fn are discarded.
func (s *Store[T]) View(fn func(doc *T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(&doc)
}

// Update runs one guarded read-modify-write cycle: load the document, apply
// fn, and persist iff fn reports a change. fn returning false leaves the
// file byte-for-byte untouched.
func (s *Store[T]) Update(fn func(doc *T) (changed bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	changed, err := fn(&doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.persist(doc)
}

// load reads the document, creating it with the default contents on first
// access. Callers must hold s.mu.
func (s *Store[T]) load() (T, error) {
	var doc T

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc = s.init()
		if err := s.persist(doc); err != nil {
			return doc, err
		}
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read contract document %s: %w", s.path, err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, s.path, err)
	}
	return doc, nil
}

// persist rewrites the whole document through a temp file and rename, so a
// crash mid-write never leaves a truncated document behind. Callers must
// hold s.mu.
func (s *Store[T]) persist(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contract document %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage contract document %s: %w", s.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write contract document %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close contract document %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace contract document %s: %w", s.path, err)
	}
	return nil
}
