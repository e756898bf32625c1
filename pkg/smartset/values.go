package smartset

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/core"
)

// FetchValues retrieves current values for the given parameters. Requests
// go out per bundle, never per parameter. A failed bundle contributes a
// core.ParameterReadError scoped to its value ids; values from the other
// bundles are still returned alongside the joined error.
func (c *Client) FetchValues(ctx context.Context, system core.System, params []core.Parameter) (map[int64]core.Value, error) {
	sessionID, token, err := c.ensureSession(ctx)
	if err != nil {
		return nil, core.FetchFailedError{Op: "fetch values", Err: err}
	}

	bundles := groupByBundle(params)

	results := make(map[int64]core.Value, len(params))
	var errs []error
	for _, bundle := range bundles {
		payload := parameterValuesPayload{
			SessionID:   sessionID,
			GatewayID:   system.GatewayID,
			SystemID:    system.ID,
			BundleID:    bundle.id,
			ValueIDList: bundle.valueIDs,
		}

		var resp parameterValuesResponse
		if err := c.post(ctx, token, c.url(parameterValuesRoute), payload, &resp); err != nil {
			c.maybeInvalidate(err)
			errs = append(errs, core.ParameterReadError{
				BundleID: bundle.id,
				ValueIDs: bundle.valueIDs,
				Err:      err,
			})
			continue
		}

		for _, v := range resp.Values {
			results[v.ValueID] = core.Value{
				ValueID: v.ValueID,
				Value:   v.Value,
				State:   v.State,
			}
		}
	}

	if len(errs) > 0 {
		log.Warn().Int("failed_bundles", len(errs)).Int("values", len(results)).Msg("partial value fetch")
	}
	return results, errors.Join(errs...)
}

// WriteValue sets one parameter upstream after local validation.
func (c *Client) WriteValue(ctx context.Context, system core.System, param core.Parameter, value string) error {
	if err := param.ValidateValue(value); err != nil {
		return core.ParameterWriteError{ValueID: param.ValueID, Name: param.Name, Err: err}
	}

	sessionID, token, err := c.ensureSession(ctx)
	if err != nil {
		return core.WriteFailedError{Op: "write parameter", Err: err}
	}

	payload := writeParametersPayload{
		SessionID: sessionID,
		GatewayID: system.GatewayID,
		SystemID:  system.ID,
		BundleID:  param.BundleID,
		Values: []writeValue{
			{ValueID: param.ValueID, Value: value},
		},
	}
	if err := c.post(ctx, token, c.url(writeParametersRoute), payload, nil); err != nil {
		c.maybeInvalidate(err)
		return core.ParameterWriteError{ValueID: param.ValueID, Name: param.Name, Err: err}
	}

	log.Info().Str("parameter", param.Name).Str("value", value).Msg("parameter written")
	return nil
}

type bundle struct {
	id       int64
	valueIDs []int64
}

// groupByBundle partitions the parameters, with deterministic bundle order
// for stable request sequences.
func groupByBundle(params []core.Parameter) []bundle {
	grouped := make(map[int64][]int64)
	for _, p := range params {
		grouped[p.BundleID] = append(grouped[p.BundleID], p.ValueID)
	}

	ids := make([]int64, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bundles := make([]bundle, len(ids))
	for i, id := range ids {
		bundles[i] = bundle{id: id, valueIDs: grouped[id]}
	}
	return bundles
}
