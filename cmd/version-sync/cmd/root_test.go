package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/version-sync/internal/config"
)

// chdirToBin creates <root>/bin, switches into it and returns root.
func chdirToBin(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))

	t.Chdir(bin)

	return root
}

// writePrimary creates the primary assembly info file under root.
func writePrimary(t *testing.T, root, contents string) string {
	t.Helper()

	path := filepath.Join(root, "Jypeli", "Properties", "AssemblyInfo.cs")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

// execute runs the root command with the given stdin and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	if args == nil {
		args = []string{}
	}

	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

// TestRootCommand_UpdatesPrimary rewrites the primary file; missing secondary files do not fail the run.
func TestRootCommand_UpdatesPrimary(t *testing.T) {
	root := chdirToBin(t)
	path := writePrimary(t, root, "[assembly: AssemblyVersion(\"1.2.3.*\")]\n")

	out, err := execute(t, "1.2.4\n")
	require.NoError(t, err)
	require.Contains(t, out, "Current version number is 1.2.3")

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[assembly: AssemblyVersion(\"1.2.4.*\")]\n", string(contents))

	_, err = os.Stat(filepath.Join(root, config.MarkerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRootCommand_Abort keeps the file when an empty line is entered.
func TestRootCommand_Abort(t *testing.T) {
	root := chdirToBin(t)
	original := "[assembly: AssemblyVersion(\"1.2.3.*\")]\n"
	path := writePrimary(t, root, original)

	_, err := execute(t, "\n")
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(contents))
}

// TestRootCommand_MissingAnchor returns the fatal error.
func TestRootCommand_MissingAnchor(t *testing.T) {
	root := chdirToBin(t)
	writePrimary(t, root, "using System;\n")

	_, err := execute(t, "1.2.4\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "version number line not found")
}

// TestRootCommand_BadLogLevel rejects unknown levels before touching files.
func TestRootCommand_BadLogLevel(t *testing.T) {
	chdirToBin(t)

	_, err := execute(t, "", "--log-level", "loud")
	require.ErrorIs(t, err, errUnknownLogLevel)

	_, err = execute(t, "", "--log-level", "info")
	require.Error(t, err, "primary file is missing")
}

// TestWriteTargets prints the compiled-in target list as YAML.
func TestWriteTargets(t *testing.T) {
	var out bytes.Buffer

	command := &cobra.Command{}
	command.SetOut(&out)

	require.NoError(t, writeTargets(command, config.Default("")))

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	require.Equal(t, *config.Default(""), decoded)
	require.Contains(t, out.String(), "installer/jypeli.nsi")
}
