//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/assetload/internal/parquet"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastLoads keeps retries short so the failing URI settles quickly.
var fastLoads = []string{"--no-lazy", "--retry-base-delay", "10ms", "--retry-limit", "1", "--output", "json"}

func TestFetchVerification(t *testing.T) {
	base := startImageServer(t)

	args := append([]string{"fetch", base + "/ok.png", base + "/missing.png"}, fastLoads...)
	out, err := runCommand(t, nil, args...)
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, "loaded", results[0]["state"])
	assert.Equal(t, float64(12), results[0]["width"])
	assert.Equal(t, float64(8), results[0]["height"])

	assert.Equal(t, "failed_permanently", results[1]["state"])
	assert.Equal(t, float64(2), results[1]["attempts"])
	assert.Equal(t, "Failed", results[1]["label"])
}

func TestPreloadVerification(t *testing.T) {
	base := startImageServer(t)

	out, err := runCommand(t, nil, "preload", base+"/ok.png", base+"/missing.png", "--output", "json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, base+"/ok.png", results[0]["uri"])
	assert.Nil(t, results[1]["uri"])
}

func TestSQLiteJournalVerification(t *testing.T) {
	base := startImageServer(t)
	dir := t.TempDir()
	env := []string{
		"ASSETLOAD_JOURNAL_BACKEND=sqlite",
		"ASSETLOAD_JOURNAL_DB_CONNECT=" + filepath.Join(dir, "journal.db"),
	}

	_, err := runCommand(t, env, "journal", "migrate")
	require.NoError(t, err)

	args := append([]string{"fetch", base + "/ok.png", base + "/missing.png"}, fastLoads...)
	_, err = runCommand(t, env, args...)
	require.NoError(t, err)

	out, err := runCommand(t, env, "journal", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Records: 2")
	assert.Contains(t, out, "failed_permanently: 1")
	assert.Contains(t, out, "loaded: 1")

	exportPath := filepath.Join(dir, "loads.parquet")
	_, err = runCommand(t, env, "journal", "export", "--output-file", exportPath)
	require.NoError(t, err)

	rows, err := pq.ReadFile[parquet.LoadRecord](exportPath)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = runCommand(t, env, "journal", "clear")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "journal.db"))
	assert.True(t, os.IsNotExist(err))
}
