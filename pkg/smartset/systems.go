package smartset

import (
	"context"
	"fmt"

	"github.com/marcinmaslon/wolf-comm/internal/core"
	"github.com/marcinmaslon/wolf-comm/internal/syscache"
)

// FetchSystemList returns the installations visible to the account, served
// from the system context cache when it holds an unexpired copy.
func (c *Client) FetchSystemList(ctx context.Context) ([]core.System, error) {
	c.mu.Lock()
	remembered := c.systems
	c.mu.Unlock()
	if remembered != nil {
		return remembered, nil
	}

	if c.contextCache != nil {
		if sctx, state := c.contextCache.Read(c.now()); state == syscache.Valid {
			c.mu.Lock()
			c.systems = sctx.Systems
			c.params = sctx.Parameters
			c.mu.Unlock()
			return sctx.Systems, nil
		}
	}

	_, token, err := c.ensureSession(ctx)
	if err != nil {
		return nil, core.FetchFailedError{Op: "fetch system list", Err: err}
	}

	var entries []systemEntry
	if err := c.get(ctx, token, c.url(systemListRoute), &entries); err != nil {
		c.maybeInvalidate(err)
		return nil, core.FetchFailedError{Op: "fetch system list", Err: err}
	}
	if len(entries) == 0 {
		return nil, core.FetchFailedError{Op: "fetch system list", Err: fmt.Errorf("account has no systems")}
	}

	systems := make([]core.System, len(entries))
	for i, e := range entries {
		systems[i] = core.System{
			ID:        e.ID,
			GatewayID: e.GatewayID,
			Name:      e.Name,
		}
	}

	c.mu.Lock()
	c.systems = systems
	c.mu.Unlock()
	return systems, nil
}
