package cli

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_PersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	for _, name := range []string{"verbose", "config-dir", "catalog", "timeout"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"retrieve", "ingest", "facts", "watch", "mcp", "settings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestCommandContext_Timeout(t *testing.T) {
	defer resetFlags()
	flagTimeout = time.Minute

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	ctx, cancel := commandContext(cmd)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)
}

func TestMCPServeCmd_RequiresRetrieval(t *testing.T) {
	restore := clearServices()
	defer restore()

	err := runMCPServe(mcpServeCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval service not configured")
}

func TestStartCatalogWatch_Disabled(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assert.Nil(t, startCatalogWatch(mcpServeCmd))
}

func TestWatchCmd_NoPaths(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.paths is empty")
}

func TestWatchCmd_IngestsThenStops(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeCatalog(t, "products.json", `[{"id": "w1", "Type": "Lamp"}]`)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := executeContext(ctx, "", "watch", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 products from 1 records.")
	assert.Contains(t, out, "Watching 1 file(s).")
}
