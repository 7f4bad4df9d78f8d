// cmd/root_test.go
package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_SubcommandsRegistered: the CLI surface is run, generate
// and the builtin version/help.
func TestRootCommand_SubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["run"], "run subcommand missing")
	assert.True(t, names["generate"], "generate subcommand missing")
}

// TestGenerateCommand_RequiresURL: --url is mandatory.
func TestGenerateCommand_RequiresURL(t *testing.T) {
	flag := generateCmd.Flags().Lookup("url")
	require.NotNil(t, flag)
	required, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]
	assert.True(t, ok && len(required) > 0, "url flag should be marked required")
}

// TestVersionSet: the build-time version variable is non-empty.
func TestVersionSet(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Equal(t, Version, rootCmd.Version)
}
