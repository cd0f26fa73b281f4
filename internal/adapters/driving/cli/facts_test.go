package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactsCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(factsCmd.Commands()))
	for _, c := range factsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"family", "categories", "attribute", "attributes",
		"find-category", "find-attribute", "describe", "stats",
	}, names)
	assert.NotNil(t, factsCmd.PersistentFlags().Lookup("json"))
}

func TestFactsCmd_Lookups(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "family", args: []string{"family", "p1"}, want: "Trail\n"},
		{name: "categories", args: []string{"categories", "p1"}, want: "Men\nOutdoor\n"},
		{name: "attribute", args: []string{"attribute", "p1", "color"}, want: "black\ngrey\n"},
		{name: "attribute by display name", args: []string{"attribute", "p2", "Product Name"}, want: "Tempo Racer\n"},
		{name: "find category", args: []string{"find-category", "Outdoor"}, want: "p1\n"},
		{name: "find attribute", args: []string{"find-attribute", "color", "red"}, want: "p2\n"},
		{name: "unknown product", args: []string{"family", "ghost"}, want: "(none)\n"},
		{name: "unknown attribute", args: []string{"attribute", "p1", "weight"}, want: "(none)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()

			out, err := execute(append([]string{"facts"}, tt.args...)...)

			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFactsCmd_Attributes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("facts", "attributes", "p1")

	require.NoError(t, err)
	assert.Equal(t, "color: black, grey\nfeature: waterproof\n", out)
}

func TestFactsCmd_AttributesJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("facts", "--json", "attributes", "p1")

	require.NoError(t, err)
	var got map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"black", "grey"}, got["color"])
	assert.Equal(t, []string{"waterproof"}, got["feature"])
}

func TestFactsCmd_ValuesJSONEmpty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("facts", "family", "ghost", "--json")

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestFactsCmd_Describe(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("facts", "describe", "p1")

	require.NoError(t, err)
	assert.Equal(t,
		"Product ID: p1\nFamily: Trail\nCategories: Men, Outdoor\nAttributes: color: black, grey; feature: waterproof\n",
		out)
}

func TestFactsCmd_DescribeGoesToStdout(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, stderr, err := executeStreams(context.Background(), "", "facts", "describe", "p2")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Product ID: p2")
	assert.Empty(t, stderr)
}

func TestFactsCmd_Stats(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("facts", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Products: 2")
	assert.Contains(t, out, "Vectors: 2")
	assert.Contains(t, out, "Embedding model: fnv-hashing")
}

func TestFactsCmd_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	catalogService = nil

	_, err := execute("facts", "family", "p1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog service not configured")
}
