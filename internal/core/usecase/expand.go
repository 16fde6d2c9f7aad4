package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/askcampus/askcampus/internal/core/ports"
)

const maxExpansionGrowth = 8

// expandQuery asks the expander for a recall-friendly rewrite under its own
// short deadline. Expansion is strictly best-effort: any error, timeout, or
// unusable output degrades to the original query. The second return reports
// whether the result degraded.
func expandQuery(ctx context.Context, expander ports.QueryExpander, query string, timeout time.Duration) (string, bool) {
	if expander == nil {
		return query, false
	}
	if timeout <= 0 {
		timeout = 800 * time.Millisecond
	}

	expandCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	expanded, err := expander.Expand(expandCtx, query)
	if err != nil {
		slog.Warn("query_expansion_degraded", "error", err)
		return query, true
	}

	expanded = strings.TrimSpace(expanded)
	if !usableExpansion(query, expanded) {
		slog.Warn("query_expansion_degraded", "reason", "unusable output")
		return query, true
	}
	if !strings.Contains(strings.ToLower(expanded), strings.ToLower(query)) {
		expanded = query + " " + expanded
	}
	return expanded, false
}

func usableExpansion(original, expanded string) bool {
	if expanded == "" {
		return false
	}
	if len(expanded) > maxExpansionGrowth*len(original)+64 {
		return false
	}
	return true
}
