package auth

import (
	"context"

	"video-pipeline-monitor/internal/domain/ports/adapter"
	"video-pipeline-monitor/internal/domain/ports/repository"
	"video-pipeline-monitor/internal/usecase"
)

// Compile-time checks
var (
	_ adapter.TokenProvider = (*WatchTokenProvider)(nil)
	_ adapter.TokenProvider = (*StaticTokenProvider)(nil)
)

// WatchTokenProvider resolves a user's pipeline bearer token from the watch
// store, decrypting it on the way out. Tokens are minted by the SaaS auth
// service and handed to the monitor at watch registration.
type WatchTokenProvider struct {
	watches repository.WatchRepository
	cipher  usecase.TokenCipher
}

func NewWatchTokenProvider(watches repository.WatchRepository, cipher usecase.TokenCipher) *WatchTokenProvider {
	return &WatchTokenProvider{watches: watches, cipher: cipher}
}

func (p *WatchTokenProvider) Token(ctx context.Context, userID string) (string, error) {
	enc, err := p.watches.TokenEncByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return "", err
	}
	return p.cipher.Decrypt(enc)
}

// StaticTokenProvider returns one fixed token regardless of user. Used by the
// demo and by dev setups running against a stub API.
type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(context.Context, string) (string, error) {
	return p.token, nil
}
