// internal/runner/suite_test.go
package runner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/oxtest-cli/internal/runner"
)

func writeSuiteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadSuite_Valid parses a complete suite file.
func TestLoadSuite_Valid(t *testing.T) {
	path := writeSuiteFile(t, "login.yaml", `
name: login-suite
base_url: https://example.com
tests:
  - name: successful login
    instruction: log in as alice with password wonderland
  - name: failed login
    instruction: log in with a wrong password and expect an error
`)

	suite, err := runner.LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "login-suite", suite.Name)
	assert.Equal(t, "https://example.com", suite.BaseURL)
	require.Len(t, suite.Tests, 2)
	assert.Equal(t, "successful login", suite.Tests[0].Name)
}

// TestLoadSuite_NameDefaultsToFilename applies when the file omits a name.
func TestLoadSuite_NameDefaultsToFilename(t *testing.T) {
	path := writeSuiteFile(t, "checkout.yaml", `
tests:
  - name: buy an item
    instruction: add the first product to the cart and check out
`)

	suite, err := runner.LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "checkout", suite.Name)
}

// TestLoadSuite_Invalid enumerates rejected suite files.
func TestLoadSuite_Invalid(t *testing.T) {
	cases := map[string]string{
		"no tests":            "name: empty\ntests: []\n",
		"missing test name":   "tests:\n  - instruction: do something\n",
		"missing instruction": "tests:\n  - name: nameless deed\n",
		"duplicate names":     "tests:\n  - name: a\n    instruction: one thing\n  - name: a\n    instruction: another thing\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeSuiteFile(t, "suite.yaml", content)
			_, err := runner.LoadSuite(path)
			assert.Error(t, err)
		})
	}
}

// TestLoadSuite_MissingFile surfaces the read failure.
func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := runner.LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
