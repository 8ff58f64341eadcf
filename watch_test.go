package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.json")

	fw, err := watchFile(path, zap.NewNop())
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	select {
	case _, ok := <-fw.Changes():
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("no change signalled")
	}
}
