package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/syllabusmatch/internal/logger"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"process", "extract", "corpus", "settings", "watch", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	t.Cleanup(func() { logger.SetVerbose(false) })

	_, err := executeCommand(t, "--verbose", "version")

	assert.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestWatchCmd_RequiresService(t *testing.T) {
	_, err := executeCommand(t, "watch", t.TempDir())

	assert.EqualError(t, err, "matching service not configured")
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")

	if assert.NotNil(t, flag) {
		assert.Equal(t, "p", flag.Shorthand)
		assert.Equal(t, "0", flag.DefValue)
	}
}
