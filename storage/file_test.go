package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "orders.json")

	backend, err := NewFileBackend(path, logger)
	require.NoError(t, err)
	assert.Equal(t, "file-orders.json", backend.Name())

	ctx := context.Background()

	_, err = backend.Load(ctx)
	assert.ErrorIs(t, err, os.ErrNotExist, "Load before any write should report no snapshot")

	require.NoError(t, backend.Write(ctx, []byte(`[{"orderId":"ORD-AA"}]`)))

	data, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"orderId":"ORD-AA"}]`, string(data))

	// A second write replaces the snapshot.
	require.NoError(t, backend.Write(ctx, []byte(`[]`)))
	data, err = backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// No temporary file is left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "Temporary snapshot file should not remain")
}

func TestNewFileBackend_CreatesParentDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "nested", "dir", "orders.json")

	backend, err := NewFileBackend(path, logger)
	require.NoError(t, err)

	require.NoError(t, backend.Write(context.Background(), []byte("[]")))
}
