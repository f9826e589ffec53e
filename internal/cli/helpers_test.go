package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const stagesSpec = `package specs

convention: Configuration: {
	category: "Infrastructure"
	source:   "prepended"
}

convention: Logging: {
	category: "Infrastructure"
	after: ["Configuration"]
}

convention: LiveMetrics: {
	host: "live"
	after: ["Logging"]
}

convention: Services: {
	after: ["Logging"]
}
`

const cycleSpec = `package specs

convention: A: after: ["B"]
convention: B: after: ["A"]
`

// writeFiles writes files relative to a fresh temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}
