package services

import (
	"context"
	"strings"

	"github.com/crewlinkhq/crewlink/internal/models"
)

// Actor identifies the caller of a lifecycle operation. Transitions are gated
// on both the role and, where ownership matters, the ID.
type Actor struct {
	ID   string
	Role models.ActorRole
}

// IsCompany reports whether the actor acts for a company account.
func (a Actor) IsCompany() bool { return a.Role == models.RoleCompany }

// IsWorker reports whether the actor is a worker.
func (a Actor) IsWorker() bool { return a.Role == models.RoleWorker }

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func normaliseIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
