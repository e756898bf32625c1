// Package tokencache persists the most recent authentication result per
// username so that restarts do not repeat the login handshake.
//
// The cache is advisory: any fault (missing file, corrupt contents, failed
// write) degrades to "re-authenticate" with a warning and never reaches the
// caller as an error.
package tokencache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultFileName = ".wolf_comm_token_cache.json"

// State classifies the outcome of a cache read.
type State int

const (
	// Absent means no entry exists for the username (or the file is missing).
	Absent State = iota
	// Corrupt means the file or entry exists but could not be used.
	Corrupt
	// Valid means a structurally complete entry was loaded. Expiry is the
	// caller's check, via Token.IsValid.
	Valid
)

// Token is one cached authentication result.
type Token struct {
	Username    string
	AccessToken string
	ExpiresAt   time.Time
}

// IsValid reports whether the token can still be presented upstream.
func (t Token) IsValid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// entry is the on-disk shape. Unknown keys in the file are ignored for
// forward compatibility; missing keys make the entry corrupt.
type entry struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}

// Cache reads and writes the per-username token file.
//
// There is no cross-process locking: concurrent client instances sharing one
// cache file may race on write. A lost write only costs one extra login.
type Cache struct {
	Path string
}

// New returns a cache at the given path, or the default
// ~/.wolf_comm_token_cache.json when path is empty.
func New(path string) *Cache {
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, defaultFileName)
		} else {
			path = defaultFileName
		}
	}
	return &Cache{Path: path}
}

// Read loads the cached token for username. It never returns an error:
// unreadable or malformed state is reported through the State and logged as
// a warning.
func (c *Cache) Read(username string) (Token, State) {
	raw, state := c.readFile()
	if state != Valid {
		return Token{}, state
	}

	e, ok := raw[username]
	if !ok {
		return Token{}, Absent
	}
	if e.AccessToken == "" || e.ExpiresAt == "" {
		log.Warn().
			Str("user", username).
			Str("path", c.Path).
			Msg("cached token entry is missing fields, ignoring it")
		return Token{}, Corrupt
	}

	expiresAt, err := time.Parse(time.RFC3339, e.ExpiresAt)
	if err != nil {
		log.Warn().
			Str("user", username).
			Err(err).
			Msg("cached token entry has an unparsable expiry, ignoring it")
		return Token{}, Corrupt
	}

	return Token{
		Username:    username,
		AccessToken: e.AccessToken,
		ExpiresAt:   expiresAt,
	}, Valid
}

// Write persists the token, overwriting any previous entry for the same
// username and preserving entries of other usernames. A corrupt existing
// file is replaced. I/O failures are logged and swallowed; the previous
// on-disk state is left as-is.
func (c *Cache) Write(token Token) {
	raw, state := c.readFile()
	if state != Valid {
		raw = make(map[string]entry)
	}

	raw[token.Username] = entry{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt.Format(time.RFC3339),
	}

	data, err := json.Marshal(raw)
	if err != nil {
		log.Warn().Err(err).Msg("could not serialize token cache")
		return
	}
	if err := os.WriteFile(c.Path, data, 0600); err != nil {
		log.Warn().
			Str("path", c.Path).
			Err(err).
			Msg("could not write token cache, continuing without it")
		return
	}
	log.Debug().
		Str("user", token.Username).
		Time("expires_at", token.ExpiresAt).
		Msg("cached token written")
}

func (c *Cache) readFile() (map[string]entry, State) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("path", c.Path).Err(err).Msg("could not read token cache")
			return nil, Corrupt
		}
		return nil, Absent
	}

	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().
			Str("path", c.Path).
			Err(err).
			Msgf("token cache is not valid JSON (%d bytes), ignoring it", len(data))
		return nil, Corrupt
	}
	return raw, Valid
}
