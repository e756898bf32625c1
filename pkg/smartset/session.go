package smartset

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/tokencache"
)

// session is the server-side monitoring handle, distinct from the token.
type session struct {
	id            int64
	createdAt     time.Time
	lastRefreshed time.Time
}

// ensureSession returns an id and token usable right now.
//
// State machine: without a session it obtains a token (cache first, login
// second), creates a session and marks it fresh. With a session younger
// than the refresh interval it is a no-op. Otherwise it refreshes the
// session server-side, but only with a token that is still live; an
// expired token is never presented upstream, the session dies with it and
// both are re-established in the same call. A refresh failure drops both
// session and token so the next call starts over with a login.
func (c *Client) ensureSession(ctx context.Context) (int64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.session != nil {
		if now.Sub(c.session.lastRefreshed) < c.refreshInterval {
			return c.session.id, c.token.AccessToken, nil
		}
		if c.token != nil && c.token.IsValid(now) {
			if err := c.refreshSession(ctx, c.token.AccessToken, c.session.id); err != nil {
				log.Warn().Err(err).Msg("session refresh failed, forcing re-login on next call")
				c.session = nil
				c.token = nil
				return 0, "", fmt.Errorf("refreshing session: %w", err)
			}
			c.session.lastRefreshed = now
			return c.session.id, c.token.AccessToken, nil
		}
		log.Info().Msg("token expired, replacing session")
		c.session = nil
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return 0, "", err
	}

	id, err := c.createSession(ctx, token.AccessToken)
	if err != nil {
		return 0, "", fmt.Errorf("creating session: %w", err)
	}

	c.token = &token
	c.session = &session{id: id, createdAt: now, lastRefreshed: now}
	log.Debug().Int64("session_id", id).Msg("session established")
	return id, token.AccessToken, nil
}

// ensureToken serves from the cache when it holds a live token and falls
// back to the login handshake otherwise. Cache faults only ever cost a
// re-login.
func (c *Client) ensureToken(ctx context.Context) (tokencache.Token, error) {
	if c.token != nil && c.token.IsValid(c.now()) {
		return *c.token, nil
	}

	cached, state := c.cache.Read(c.username)
	if state == tokencache.Valid && cached.IsValid(c.now()) {
		log.Debug().Str("user", c.username).Msg("using cached token")
		return cached, nil
	}
	if state == tokencache.Valid {
		log.Info().Str("user", c.username).Msg("cached token expired, requesting a new one")
	}

	token, err := c.authenticator.Login(ctx)
	if err != nil {
		var zero tokencache.Token
		return zero, err
	}
	c.cache.Write(token)
	return token, nil
}

func (c *Client) createSession(ctx context.Context, token string) (int64, error) {
	payload := createSessionPayload{
		Timestamp: c.now().UTC().Format("2006-01-02T15:04:05"),
	}
	var resp createSessionResponse
	if err := c.post(ctx, token, c.url(createSessionRoute), payload, &resp); err != nil {
		return 0, err
	}
	if resp.BrowserSessionID == 0 {
		return 0, fmt.Errorf("portal returned no session id")
	}
	return resp.BrowserSessionID, nil
}

func (c *Client) refreshSession(ctx context.Context, token string, id int64) error {
	return c.post(ctx, token, c.url(updateSessionRoute), updateSessionPayload{SessionID: id}, nil)
}

// invalidate drops the session and token after the portal rejected them
// mid-operation.
func (c *Client) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
	c.token = nil
}

// Login forces a fresh handshake, bypassing cache and session state. The
// result is persisted to the token cache.
func (c *Client) Login(ctx context.Context) (tokencache.Token, error) {
	token, err := c.authenticator.Login(ctx)
	if err != nil {
		var zero tokencache.Token
		return zero, err
	}
	c.cache.Write(token)

	c.mu.Lock()
	c.token = &token
	c.session = nil
	c.mu.Unlock()
	return token, nil
}
