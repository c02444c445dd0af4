package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), m)
}

func TestLoadMergesPartialManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brand.yaml")
	yaml := `name: acme
colors:
  primary: "#FF0000"
layouts:
  title: "Big Opener"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "acme", m.Name)
	require.Equal(t, "#FF0000", m.Colors.Primary)
	// Unset fields fall back to the default manifest.
	require.Equal(t, Default().Colors.Secondary, m.Colors.Secondary)
	require.Equal(t, Default().Fonts.Body, m.Fonts.Body)
	require.Equal(t, "Big Opener", m.Layouts["title"])
	require.Equal(t, Default().Layouts["diagram"], m.Layouts["diagram"])
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colors: ["), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), m)
}
