package clix

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchFlags(args ...string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	flags.Int64("limit", 0, "")
	flags.String("query", "", "")
	flags.String("output", "table", "")
	if err := flags.Parse(args); err != nil {
		panic(err)
	}
	return flags
}

func TestParseFetchDefaults(t *testing.T) {
	params, err := ParseFetch(fetchFlags(), 25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), params.Limit)
	assert.Equal(t, "", params.Query)
}

func TestParseFetchExplicit(t *testing.T) {
	params, err := ParseFetch(fetchFlags("--limit", "10", "--query", "newer_than:7d"), 25)
	require.NoError(t, err)
	assert.Equal(t, int64(10), params.Limit)
	assert.Equal(t, "newer_than:7d", params.Query)
}

func TestParseFetchClampsLimit(t *testing.T) {
	params, err := ParseFetch(fetchFlags("--limit", "9999"), 25)
	require.NoError(t, err)
	assert.Equal(t, int64(500), params.Limit)

	params, err = ParseFetch(fetchFlags("--limit", "-3"), 25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), params.Limit)
}

func TestParseOutput(t *testing.T) {
	out, err := ParseOutput(fetchFlags())
	require.NoError(t, err)
	assert.Equal(t, "table", out)

	out, err = ParseOutput(fetchFlags("--output", "json"))
	require.NoError(t, err)
	assert.Equal(t, "json", out)

	_, err = ParseOutput(fetchFlags("--output", "yaml"))
	assert.Error(t, err)
}
