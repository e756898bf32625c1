package smartset

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/core"
	"github.com/marcinmaslon/wolf-comm/internal/syscache"
)

// FetchParameters discovers the parameter catalog for one system. The
// catalog is fetched once per client run and served from memory afterwards;
// with a system context cache configured it also survives restarts.
// Guided mode walks the portal's menu structure; expert mode extracts every
// descriptor the document contains, wherever it hides. Both paths converge
// on the same deduplication before anything is returned.
func (c *Client) FetchParameters(ctx context.Context, system core.System) ([]core.Parameter, error) {
	c.mu.Lock()
	cached := c.params
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	if c.contextCache != nil {
		if sctx, state := c.contextCache.Read(c.now()); state == syscache.Valid {
			log.Info().Int("count", len(sctx.Parameters)).Msg("using cached system context")
			c.mu.Lock()
			c.systems = sctx.Systems
			c.params = sctx.Parameters
			c.mu.Unlock()
			return sctx.Parameters, nil
		}
	}

	_, token, err := c.ensureSession(ctx)
	if err != nil {
		return nil, core.FetchFailedError{Op: "fetch parameters", Err: err}
	}

	q := url.Values{}
	q.Set("GatewayId", fmt.Sprintf("%d", system.GatewayID))
	q.Set("SystemId", fmt.Sprintf("%d", system.ID))
	guiURL := c.url(guiDescriptionRoute) + "?" + q.Encode()

	var params []core.Parameter
	if c.expertMode {
		var doc any
		if err := c.get(ctx, token, guiURL, &doc); err != nil {
			c.maybeInvalidate(err)
			return nil, core.FetchFailedError{Op: "fetch parameters", Err: err}
		}
		params = extractAllParameters(doc)
	} else {
		var doc guiDescription
		if err := c.get(ctx, token, guiURL, &doc); err != nil {
			c.maybeInvalidate(err)
			return nil, core.FetchFailedError{Op: "fetch parameters", Err: err}
		}
		params = walkMenuItems(doc.MenuItems)
	}

	params = dedupeParameters(params)
	if len(params) == 0 {
		return nil, core.FetchFailedError{Op: "fetch parameters", Err: fmt.Errorf("gui description contains no parameters")}
	}
	log.Info().Int("count", len(params)).Bool("expert", c.expertMode).Msg("parameter catalog loaded")

	c.mu.Lock()
	c.params = params
	systems := c.systems
	c.mu.Unlock()

	if c.contextCache != nil {
		if len(systems) == 0 {
			systems = []core.System{system}
		}
		c.contextCache.Write(syscache.Context{Systems: systems, Parameters: params}, c.now())
	}
	return params, nil
}

// FetchGuiDescription returns the portal's raw GUI document, bypassing the
// catalog cache. Useful when discovery misses a parameter.
func (c *Client) FetchGuiDescription(ctx context.Context, system core.System) (map[string]any, error) {
	_, token, err := c.ensureSession(ctx)
	if err != nil {
		return nil, core.FetchFailedError{Op: "fetch gui description", Err: err}
	}

	q := url.Values{}
	q.Set("GatewayId", fmt.Sprintf("%d", system.GatewayID))
	q.Set("SystemId", fmt.Sprintf("%d", system.ID))

	var doc map[string]any
	if err := c.get(ctx, token, c.url(guiDescriptionRoute)+"?"+q.Encode(), &doc); err != nil {
		c.maybeInvalidate(err)
		return nil, core.FetchFailedError{Op: "fetch gui description", Err: err}
	}
	return doc, nil
}

// maybeInvalidate drops session state when the portal rejected our
// credentials mid-operation, so the next call re-establishes them.
func (c *Client) maybeInvalidate(err error) {
	if errors.Is(err, ErrUnauthorized) {
		c.invalidate()
	}
}

// walkMenuItems is the guided traversal: menu items, their submenus, and
// every tab view's descriptors. The menu name becomes the parameter's
// parent group.
func walkMenuItems(items []menuItem) []core.Parameter {
	var params []core.Parameter
	for _, item := range items {
		for _, tab := range item.TabViews {
			for _, desc := range tab.ParameterDescriptors {
				p := desc.toParameter()
				if p.BundleID == 0 {
					p.BundleID = tab.BundleID
				}
				if p.Parent == "" {
					p.Parent = item.Name
				}
				params = append(params, p)
			}
		}
		params = append(params, walkMenuItems(item.SubMenuEntries)...)
	}
	return params
}

// extractAllParameters recursively scans the raw document for anything
// shaped like a parameter descriptor.
func extractAllParameters(node any) []core.Parameter {
	var params []core.Parameter
	switch v := node.(type) {
	case map[string]any:
		if _, hasValueID := v["ValueId"]; hasValueID {
			if _, hasName := v["Name"]; hasName {
				var desc parameterDescriptor
				if err := mapstructure.WeakDecode(v, &desc); err == nil && desc.ValueID != 0 && desc.Name != "" {
					params = append(params, desc.toParameter())
					return params
				}
			}
		}
		for _, child := range v {
			params = append(params, extractAllParameters(child)...)
		}
	case []any:
		for _, child := range v {
			params = append(params, extractAllParameters(child)...)
		}
	}
	return params
}

// dedupeParameters drops repeated (value id, name) pairs, keeping the first
// representative. The portal lists popular parameters under several menus.
func dedupeParameters(params []core.Parameter) []core.Parameter {
	seen := make(map[core.Key]struct{}, len(params))
	out := make([]core.Parameter, 0, len(params))
	for _, p := range params {
		key := p.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (d parameterDescriptor) toParameter() core.Parameter {
	var items map[string]string
	if len(d.ListItems) > 0 {
		items = make(map[string]string, len(d.ListItems))
		for _, li := range d.ListItems {
			items[li.Value] = li.DisplayText
		}
	}
	return core.Parameter{
		ValueID:     d.ValueID,
		ParameterID: d.ParameterID,
		BundleID:    d.BundleID,
		Name:        d.Name,
		Unit:        core.UnitKindFromDescriptor(d.Unit, len(d.ListItems) > 0),
		ReadOnly:    d.IsReadOnly,
		ListItems:   items,
	}
}
