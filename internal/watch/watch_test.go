package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherNotifiesOnWriteToDBFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "corpus.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("init"), 0o644))

	w, err := New(dbPath)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(dbPath, []byte("changed"), 0o644))

	select {
	case <-w.Notify():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification after writing the database file")
	}
}

func TestWatcherNotifiesOnWALSibling(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "corpus.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("init"), 0o644))

	w, err := New(dbPath)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal"), 0o644))

	select {
	case <-w.Notify():
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification after writing the WAL sibling")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "corpus.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("init"), 0o644))

	w, err := New(dbPath)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	select {
	case <-w.Notify():
		t.Fatal("did not expect a notification for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStopEndsEventLoop(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "corpus.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("init"), 0o644))

	w, err := New(dbPath)
	require.NoError(t, err)
	w.Stop()
}
