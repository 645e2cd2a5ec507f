package docstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Label   string   `json:"label"`
	Entries []string `json:"entries"`
}

func newTestDoc() testDoc {
	return testDoc{Label: "default"}
}

func TestStoreCreatesDefaultOnFirstAccess(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "doc.json", newTestDoc)

	err := store.View(func(doc *testDoc) error {
		assert.Equal(t, "default", doc.Label)
		assert.Empty(t, doc.Entries)
		return nil
	})
	require.NoError(t, err)

	// First access must have materialized the file.
	data, err := os.ReadFile(filepath.Join(dir, "doc.json"))
	require.NoError(t, err)
	var onDisk testDoc
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, "default", onDisk.Label)
}

func TestStoreUpdatePersistsOnlyWhenChanged(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "doc.json", newTestDoc)

	err := store.Update(func(doc *testDoc) (bool, error) {
		doc.Entries = append(doc.Entries, "one")
		return true, nil
	})
	require.NoError(t, err)

	before, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	// A no-change update must leave the file byte-for-byte untouched.
	err = store.Update(func(doc *testDoc) (bool, error) {
		doc.Entries = append(doc.Entries, "discarded")
		return false, nil
	})
	require.NoError(t, err)

	after, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	err = store.View(func(doc *testDoc) error {
		assert.Equal(t, []string{"one"}, doc.Entries)
		return nil
	})
	require.NoError(t, err)
}

func TestStoreViewDiscardsMutations(t *testing.T) {
	store := New(t.TempDir(), "doc.json", newTestDoc)

	require.NoError(t, store.View(func(doc *testDoc) error {
		doc.Label = "mutated"
		return nil
	}))
	require.NoError(t, store.View(func(doc *testDoc) error {
		assert.Equal(t, "default", doc.Label)
		return nil
	}))
}

func TestStoreCorruptDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.json"), []byte("{not json"), 0o644))

	store := New(dir, "doc.json", newTestDoc)
	err := store.View(func(*testDoc) error { return nil })
	require.ErrorIs(t, err, ErrCorruptDocument)
	assert.Contains(t, err.Error(), "doc.json")
}

func TestStoreLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, "doc.json", newTestDoc)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Update(func(doc *testDoc) (bool, error) {
			doc.Entries = append(doc.Entries, "x")
			return true, nil
		}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json", entries[0].Name())
}

func TestStoreSerializesConcurrentUpdates(t *testing.T) {
	store := New(t.TempDir(), "doc.json", newTestDoc)

	const goroutines = 20
	const updatesPerGoroutine = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < updatesPerGoroutine; j++ {
				err := store.Update(func(doc *testDoc) (bool, error) {
					doc.Entries = append(doc.Entries, "e")
					return true, nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, store.View(func(doc *testDoc) error {
		assert.Len(t, doc.Entries, goroutines*updatesPerGoroutine,
			"read-modify-write cycles must not interleave")
		return nil
	}))
}

func TestStorePathStaysInsideDir(t *testing.T) {
	store := New("/var/lib/payshield", "PolicyContract.json", newTestDoc)
	assert.True(t, strings.HasPrefix(store.Path(), "/var/lib/payshield/"))
}
