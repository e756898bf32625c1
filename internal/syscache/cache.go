// Package syscache persists the discovered system context, the system list
// and the parameter catalog, so a restart within the expiry window skips
// discovery entirely.
//
// Like the token cache it is advisory: any fault degrades to rediscovery
// with a warning and never reaches the caller as an error.
package syscache

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/core"
)

const defaultFileName = "system_context_cache.json"

// TTL is how long a written context stays usable. The catalog is stable in
// practice; a day bounds how stale a renamed or re-grouped parameter can get.
const TTL = 24 * time.Hour

// State classifies the outcome of a cache read.
type State int

const (
	// Absent means no usable context exists (missing file or expired).
	Absent State = iota
	// Corrupt means the file exists but could not be used.
	Corrupt
	// Valid means a complete, unexpired context was loaded.
	Valid
)

// Context is one cached discovery result.
type Context struct {
	Systems    []core.System
	Parameters []core.Parameter
}

// document is the on-disk shape.
type document struct {
	ExpiresAt  string      `json:"expires_at"`
	Systems    []systemRow `json:"systems"`
	Parameters []paramRow  `json:"parameters"`
}

type systemRow struct {
	ID      int64  `json:"id"`
	Gateway int64  `json:"gateway"`
	Name    string `json:"name"`
}

type paramRow struct {
	Name        string            `json:"name"`
	ParameterID int64             `json:"parameter_id"`
	ValueID     int64             `json:"value_id"`
	BundleID    int64             `json:"bundle_id"`
	ReadOnly    bool              `json:"read_only"`
	Parent      string            `json:"parent,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	ListItems   map[string]string `json:"list_items,omitempty"`
}

// Cache reads and writes the context file.
type Cache struct {
	Path string
}

// New returns a cache at the given path, or system_context_cache.json in
// the working directory when path is empty.
func New(path string) *Cache {
	if path == "" {
		path = defaultFileName
	}
	return &Cache{Path: path}
}

// Read loads the cached context. It never returns an error: unreadable,
// malformed or expired state is reported through the State and logged.
func (c *Cache) Read(now time.Time) (Context, State) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("path", c.Path).Err(err).Msg("could not read system context cache")
			return Context{}, Corrupt
		}
		return Context{}, Absent
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().
			Str("path", c.Path).
			Err(err).
			Msgf("system context cache is not valid JSON (%d bytes), ignoring it", len(data))
		return Context{}, Corrupt
	}

	expiresAt, err := time.Parse(time.RFC3339, doc.ExpiresAt)
	if err != nil {
		log.Warn().Str("path", c.Path).Err(err).Msg("system context cache has an unparsable expiry, ignoring it")
		return Context{}, Corrupt
	}
	if !now.Before(expiresAt) {
		log.Debug().Str("path", c.Path).Time("expired_at", expiresAt).Msg("system context cache expired")
		return Context{}, Absent
	}
	if len(doc.Systems) == 0 || len(doc.Parameters) == 0 {
		log.Warn().Str("path", c.Path).Msg("system context cache is incomplete, ignoring it")
		return Context{}, Corrupt
	}

	sctx := Context{
		Systems:    make([]core.System, len(doc.Systems)),
		Parameters: make([]core.Parameter, len(doc.Parameters)),
	}
	for i, row := range doc.Systems {
		sctx.Systems[i] = core.System{ID: row.ID, GatewayID: row.Gateway, Name: row.Name}
	}
	for i, row := range doc.Parameters {
		unit := core.UnitKind(row.Unit)
		if unit == "" {
			unit = core.UnitNone
		}
		sctx.Parameters[i] = core.Parameter{
			ValueID:     row.ValueID,
			ParameterID: row.ParameterID,
			BundleID:    row.BundleID,
			Name:        row.Name,
			Parent:      row.Parent,
			Unit:        unit,
			ReadOnly:    row.ReadOnly,
			ListItems:   row.ListItems,
		}
	}
	return sctx, Valid
}

// Write persists the context with a fresh expiry, replacing whatever the
// file held before. I/O failures are logged and swallowed.
func (c *Cache) Write(sctx Context, now time.Time) {
	doc := document{
		ExpiresAt:  now.Add(TTL).Format(time.RFC3339),
		Systems:    make([]systemRow, len(sctx.Systems)),
		Parameters: make([]paramRow, len(sctx.Parameters)),
	}
	for i, s := range sctx.Systems {
		doc.Systems[i] = systemRow{ID: s.ID, Gateway: s.GatewayID, Name: s.Name}
	}
	for i, p := range sctx.Parameters {
		doc.Parameters[i] = paramRow{
			Name:        p.Name,
			ParameterID: p.ParameterID,
			ValueID:     p.ValueID,
			BundleID:    p.BundleID,
			ReadOnly:    p.ReadOnly,
			Parent:      p.Parent,
			Unit:        string(p.Unit),
			ListItems:   p.ListItems,
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		log.Warn().Err(err).Msg("could not serialize system context cache")
		return
	}
	if err := os.WriteFile(c.Path, data, 0600); err != nil {
		log.Warn().
			Str("path", c.Path).
			Err(err).
			Msg("could not write system context cache, continuing without it")
		return
	}
	log.Debug().
		Str("path", c.Path).
		Int("systems", len(sctx.Systems)).
		Int("parameters", len(sctx.Parameters)).
		Msg("system context cached")
}
