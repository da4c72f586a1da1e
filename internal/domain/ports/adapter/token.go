package adapter

import "context"

// TokenProvider supplies the bearer token used against the pipeline API on a
// given user's behalf. The auth service that mints these tokens is an external
// collaborator; this port only fetches them.
type TokenProvider interface {
	Token(ctx context.Context, userID string) (string, error)
}
