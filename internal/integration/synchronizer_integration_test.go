package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/version-sync/internal/config"
	"github.com/oshokin/version-sync/internal/service/synchronizer"
)

// layoutProject writes a Jypeli-like tree where every target carries version plus unrelated lines.
func layoutProject(t *testing.T, version string) string {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default(root)

	for _, target := range cfg.Targets {
		path := cfg.Resolve(target)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

		contents := "// header of " + target.Path + "\n" +
			target.Render(version) + "\n" +
			"// footer\n"
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}

	return root
}

// bump runs one synchronization answering the prompt with answer.
func bump(t *testing.T, root, answer string) *synchronizer.Result {
	t.Helper()

	var output bytes.Buffer

	result, err := synchronizer.Run(context.Background(), &synchronizer.Options{
		Config:     config.Default(root),
		Input:      synchronizer.NewReaderLineSource(strings.NewReader(answer + "\n")),
		Output:     &output,
		MarkerPath: filepath.Join(root, config.MarkerFilename),
	})
	require.NoError(t, err)
	require.NoError(t, result.Err)

	return result
}

// TestSynchronizer_ConsecutiveBumps keeps all files consistent across several runs.
func TestSynchronizer_ConsecutiveBumps(t *testing.T) {
	t.Parallel()

	root := layoutProject(t, "1.2.3")
	cfg := config.Default(root)

	previous := "1.2.3"
	for _, next := range []string{"1.2.4", "1.3.0", "1.2.9", "2.0.0"} {
		result := bump(t, root, next)
		require.Equal(t, previous, result.Previous.String())
		require.Equal(t, next, result.Current.String())

		for _, target := range cfg.Targets {
			contents, err := os.ReadFile(cfg.Resolve(target))
			require.NoError(t, err)
			require.Equal(t,
				"// header of "+target.Path+"\n"+target.Render(next)+"\n// footer\n",
				string(contents))
		}

		previous = next
	}

	// Nothing but the targets remains in the tree.
	var files []string

	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err == nil && !entry.IsDir() {
			files = append(files, path)
		}

		return err
	})
	require.NoError(t, err)
	require.Len(t, files, len(cfg.Targets))
}
