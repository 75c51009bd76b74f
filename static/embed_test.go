package static

import (
	"io/fs"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedAssetsExist(t *testing.T) {
	expected := []string{
		"darkroom.css",
		"help.md",
	}

	var got []string
	err := fs.WalkDir(FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		got = append(got, path)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(got)
	require.Equal(t, expected, got)
}

func TestHelpMarkdown(t *testing.T) {
	md := HelpMarkdown()
	require.Contains(t, md, "# Darkroom")
	require.Contains(t, md, "## Keyboard")
}
