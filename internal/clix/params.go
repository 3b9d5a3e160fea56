package clix

import (
	"strings"

	"github.com/spf13/pflag"
)

type PaginationParams struct {
	Limit  int
	Offset int
}

func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{Limit: limit, Offset: offset}, nil
}

// ParseCommaList reads a comma-separated string flag, trimming whitespace
// and dropping empty entries.
func ParseCommaList(flags *pflag.FlagSet, name string) ([]string, error) {
	raw, err := flags.GetString(name)
	if err != nil {
		return nil, err
	}
	var items []string
	for _, c := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(c)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items, nil
}
