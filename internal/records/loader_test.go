package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDatabase = `{
  "database": {"id": "test", "version": "1.0"},
  "records": [
    {
      "name": "ts:di:0",
      "type": "bi",
      "device": "hpe1368a",
      "link": {"type": "vme_io", "card": 0, "signal": 3},
      "scan": {"mode": "periodic", "interval_ms": 100}
    },
    {
      "name": "ts:sel:0",
      "type": "mbbo",
      "device": "hpe1368a",
      "link": {"type": "vme_io", "card": 1, "signal": 4},
      "scan": {"mode": "passive"},
      "num_bits": 3
    }
  ]
}`

func writeDatabase(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o644))
}

func TestLoaderLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads and validates a database", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeDatabase(t, dir, "teststand", validDatabase)

		loader, err := NewLoader([]string{dir})
		require.NoError(t, err)

		db, err := loader.Load("teststand")
		require.NoError(t, err)

		assert.Equal(t, "test", db.Database.ID)
		require.Len(t, db.Records, 2)
		assert.Equal(t, "ts:di:0", db.Records[0].Name)
		assert.Equal(t, uint(3), db.Records[0].Link.Signal)
		assert.Equal(t, uint(3), db.Records[1].NumBits)
	})

	t.Run("searches multiple paths in order", func(t *testing.T) {
		t.Parallel()
		empty := t.TempDir()
		dir := t.TempDir()
		writeDatabase(t, dir, "teststand", validDatabase)

		loader, err := NewLoader([]string{empty, dir})
		require.NoError(t, err)

		_, err = loader.Load("teststand")
		assert.NoError(t, err)
	})

	t.Run("missing database reports the search paths", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		loader, err := NewLoader([]string{dir})
		require.NoError(t, err)

		_, err = loader.Load("nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("rejects a database that fails schema validation", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeDatabase(t, dir, "bad", `{
		  "database": {"id": "test", "version": "1.0"},
		  "records": [
		    {"name": "ts:x", "type": "waveform", "device": "hpe1368a", "link": {"type": "vme_io"}}
		  ]
		}`)

		loader, err := NewLoader([]string{dir})
		require.NoError(t, err)

		_, err = loader.Load("bad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeDatabase(t, dir, "broken", `{not json`)

		loader, err := NewLoader([]string{dir})
		require.NoError(t, err)

		_, err = loader.Load("broken")
		assert.Error(t, err)
	})

	t.Run("caches parsed databases", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeDatabase(t, dir, "teststand", validDatabase)

		loader, err := NewLoader([]string{dir})
		require.NoError(t, err)

		first, err := loader.Load("teststand")
		require.NoError(t, err)

		// Removing the file does not invalidate the cache.
		require.NoError(t, os.Remove(filepath.Join(dir, "teststand.json")))

		second, err := loader.Load("teststand")
		require.NoError(t, err)
		assert.Same(t, first, second)

		loader.ClearCache()
		_, err = loader.Load("teststand")
		assert.Error(t, err)
	})
}
