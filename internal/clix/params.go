package clix

import (
	"fmt"

	"github.com/spf13/pflag"
)

type FetchParams struct {
	Limit int64
	Query string
}

// ParseFetch reads the shared fetch flags, clamping the limit to something
// sane.
func ParseFetch(flags *pflag.FlagSet, defaultLimit int64) (FetchParams, error) {
	limit, _ := flags.GetInt64("limit")
	query, _ := flags.GetString("query")
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 500 {
		limit = 500
	}
	return FetchParams{Limit: limit, Query: query}, nil
}

// ParseOutput validates the --output flag.
func ParseOutput(flags *pflag.FlagSet) (string, error) {
	output, _ := flags.GetString("output")
	switch output {
	case "", "table":
		return "table", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table or json)", output)
	}
}
