package session

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the manager to oauth2.TokenSource, so oauth2-aware
// HTTP stacks (oauth2.NewClient, gRPC credential wrappers) can consume
// this session directly.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, manager: m}
}

type managerTokenSource struct {
	ctx     context.Context
	manager *Manager
}

var _ oauth2.TokenSource = (*managerTokenSource)(nil)

func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	tok, err := ts.manager.EnsureValidToken(ts.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}
