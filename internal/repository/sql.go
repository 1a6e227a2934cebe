package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/coachdesk-api/internal/queryapi"
)

// Executor runs SQL against the remote query endpoint.
type Executor interface {
	Execute(ctx context.Context, sql string) (queryapi.Rows, error)
}

// quoteLiteral escapes a value for interpolation into query text. The
// query endpoint only accepts raw SQL strings, so escaping at this boundary
// is the parameterization: single quotes are doubled and NUL bytes dropped.
// Every identifier that reaches query text must pass through here.
func quoteLiteral(value string) string {
	value = strings.ReplaceAll(value, "\x00", "")
	return strings.ReplaceAll(value, "'", "''")
}

// quoteList renders ids as the body of a SQL IN ('...','...') list.
func quoteList(ids []string) string {
	escaped := make([]string, 0, len(ids))
	for _, id := range ids {
		escaped = append(escaped, quoteLiteral(id))
	}
	return strings.Join(escaped, "','")
}
