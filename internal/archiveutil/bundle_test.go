package archiveutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestBundle(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	defer func() { _ = zw.Close() }()

	manifest := `{"name":"pong","version":"1.0","description":"paddle game","type":"arcade","min_players":2,"max_players":2,"execution":{"server_cmd":["./bin/pong-server"],"client_cmd":["./bin/pong-client"],"args_format":{"connect_ip":"--ip","connect_port":"--port"}}}`
	w, err := zw.Create("manifest.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(manifest))
	require.NoError(t, err)

	w2, err := zw.Create("bin/pong-server")
	require.NoError(t, err)
	_, err = w2.Write([]byte("#!/bin/sh\necho pong"))
	require.NoError(t, err)
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pong.zip")
	writeTestBundle(t, archivePath)

	m, err := ReadManifest(archivePath)
	require.NoError(t, err)
	assert.Equal(t, "pong", m.Name)
	assert.Equal(t, 2, m.MinPlayers)
	assert.Equal(t, []string{"./bin/pong-server"}, m.Execution.ServerCmd)
	assert.Equal(t, "--port", m.Execution.ArgsFormat.ConnectPort)
}

func TestReadManifest_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "empty.zip")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = ReadManifest(archivePath)
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "pong.zip")
	writeTestBundle(t, archivePath)

	destDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(archivePath, destDir))

	data, err := os.ReadFile(filepath.Join(destDir, "bin", "pong-server"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho pong", string(data))

	manifestData, err := os.ReadFile(filepath.Join(destDir, "manifest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifestData), "pong")
}
