// Package interests implements the clients_interests method: a per-client
// lookup of interest tags from the read-only store.
package interests

import (
	"context"
	"strconv"

	"github.com/scoring-lab/project-scoring/internal/dispatch"
	"github.com/scoring-lab/project-scoring/internal/schema"
	"github.com/scoring-lab/project-scoring/internal/storage"
)

// MethodName is the registry key for this handler.
const MethodName = "clients_interests"

type Service struct {
	store  storage.Store
	schema *schema.Schema
}

func New(store storage.Store) *Service {
	if store == nil {
		panic("interests: store must not be nil")
	}
	return &Service{
		store:  store,
		schema: argumentsSchema(),
	}
}

func argumentsSchema() *schema.Schema {
	return schema.New().
		Add("client_ids", schema.NewClientIDs(true, false)).
		Add("date", schema.NewDate(false, true))
}

func (s *Service) Validate(args map[string]any) (schema.Values, []string) {
	return s.schema.Validate(args)
}

// Run maps every client id to its interest list. The date argument is
// validated for format but does not affect the result. Ids absent from the
// store map to an empty list so the response always carries one key per
// requested client.
func (s *Service) Run(ctx context.Context, args schema.Values, auth dispatch.AuthContext) (any, error) {
	ids := args.Ints("client_ids")
	result := make(map[string][]string, len(ids))
	for _, id := range ids {
		tags, err := s.store.Interests(ctx, id)
		if err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []string{}
		}
		result[strconv.Itoa(id)] = tags
	}
	return result, nil
}
