// Package security holds the stand-in principal provider. Real identity
// and credential storage are external; the engine only needs a token to
// user-id resolution.
package security

import (
	"context"
	"errors"
)

var ErrUnknownToken = errors.New("security: unknown token")

// StaticPrincipalResolver maps pre-shared bearer tokens to user ids,
// configured from the environment.
type StaticPrincipalResolver struct {
	tokens map[string]string
}

func NewStaticPrincipalResolver(tokens map[string]string) *StaticPrincipalResolver {
	if tokens == nil {
		tokens = map[string]string{}
	}
	return &StaticPrincipalResolver{tokens: tokens}
}

func (r *StaticPrincipalResolver) Resolve(ctx context.Context, token string) (string, error) {
	userID, ok := r.tokens[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return userID, nil
}
