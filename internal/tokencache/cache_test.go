package tokencache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "cache.json"))
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)

	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	c.Write(Token{Username: "anna", AccessToken: "tok-a", ExpiresAt: expires})

	got, state := c.Read("anna")
	if state != Valid {
		t.Fatalf("Read() state = %v, want Valid", state)
	}
	if got.AccessToken != "tok-a" || !got.ExpiresAt.Equal(expires) {
		t.Errorf("Read() = %+v, want token tok-a expiring %v", got, expires)
	}
}

func TestCache_PreservesOtherUsers(t *testing.T) {
	c := newTestCache(t)

	expires := time.Now().Add(time.Hour)
	c.Write(Token{Username: "anna", AccessToken: "tok-a", ExpiresAt: expires})
	c.Write(Token{Username: "ben", AccessToken: "tok-b", ExpiresAt: expires})
	c.Write(Token{Username: "anna", AccessToken: "tok-a2", ExpiresAt: expires})

	if got, state := c.Read("anna"); state != Valid || got.AccessToken != "tok-a2" {
		t.Errorf("anna: got %+v (state %v), want overwritten token", got, state)
	}
	if got, state := c.Read("ben"); state != Valid || got.AccessToken != "tok-b" {
		t.Errorf("ben: got %+v (state %v), want preserved token", got, state)
	}
}

func TestCache_MissingFile(t *testing.T) {
	c := newTestCache(t)
	if _, state := c.Read("anna"); state != Absent {
		t.Errorf("Read() state = %v, want Absent", state)
	}
}

func TestCache_UnknownUser(t *testing.T) {
	c := newTestCache(t)
	c.Write(Token{Username: "anna", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)})
	if _, state := c.Read("ben"); state != Absent {
		t.Errorf("Read() state = %v, want Absent", state)
	}
}

func TestCache_CorruptFile(t *testing.T) {
	c := newTestCache(t)
	if err := os.WriteFile(c.Path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, state := c.Read("anna"); state != Corrupt {
		t.Errorf("Read() state = %v, want Corrupt", state)
	}

	// a write replaces the corruption and the cache works again
	c.Write(Token{Username: "anna", AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)})
	if got, state := c.Read("anna"); state != Valid || got.AccessToken != "tok" {
		t.Errorf("Read() after recovery = %+v (state %v), want Valid token", got, state)
	}
}

func TestCache_CorruptEntry(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    State
	}{
		{name: "Missing expiry", content: `{"anna": {"access_token": "tok"}}`, want: Corrupt},
		{name: "Missing token", content: `{"anna": {"expires_at": "2030-01-01T00:00:00Z"}}`, want: Corrupt},
		{name: "Bad expiry format", content: `{"anna": {"access_token": "tok", "expires_at": "tomorrow"}}`, want: Corrupt},
		{name: "Unknown keys ignored", content: `{"anna": {"access_token": "tok", "expires_at": "2030-01-01T00:00:00Z", "future_field": 1}}`, want: Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t)
			if err := os.WriteFile(c.Path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, state := c.Read("anna"); state != tt.want {
				t.Errorf("Read() state = %v, want %v", state, tt.want)
			}
		})
	}
}

func TestToken_IsValid(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token Token
		want  bool
	}{
		{name: "Future expiry", token: Token{AccessToken: "t", ExpiresAt: now.Add(time.Minute)}, want: true},
		{name: "Past expiry", token: Token{AccessToken: "t", ExpiresAt: now.Add(-time.Minute)}, want: false},
		{name: "Expiry right now", token: Token{AccessToken: "t", ExpiresAt: now}, want: false},
		{name: "Zero token", token: Token{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.IsValid(now); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
