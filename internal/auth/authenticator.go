// Package auth performs the Wolf Smartset login handshake.
//
// The identity server only speaks the browser flow: fetch the login page,
// post the credentials together with the page's request verification token,
// pick the authorization code off the callback redirect, then exchange the
// code for an access token with the PKCE verifier.
package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/oauth2"

	"github.com/marcinmaslon/wolf-comm/internal/core"
	"github.com/marcinmaslon/wolf-comm/internal/tokencache"
)

const (
	DefaultBaseURL = "https://www.wolf-smartset.com"
	DefaultAuthURL = DefaultBaseURL + "/idsrv"

	clientID  = "smartset.web"
	authScope = "openid profile api role"

	verificationTokenField = "__RequestVerificationToken"
)

// Authenticator holds the credentials and endpoints for one account. It
// keeps no state between Login calls; persistence is the token cache's job.
type Authenticator struct {
	Username string
	Password string

	// BaseURL is the portal origin (redirect target), AuthURL the identity
	// server. Overridable for tests.
	BaseURL string
	AuthURL string

	// Transport is the base round tripper for the handshake. The login flow
	// always runs on its own cookie jar.
	Transport http.RoundTripper
}

func New(username, password string) *Authenticator {
	return &Authenticator{
		Username: username,
		Password: password,
		BaseURL:  DefaultBaseURL,
		AuthURL:  DefaultAuthURL,
	}
}

// Login runs the full handshake and returns a cache-ready token. All
// failure modes surface as core.AuthenticationError.
func (a *Authenticator) Login(ctx context.Context) (tokencache.Token, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return tokencache.Token{}, core.AuthenticationError{Err: err}
	}
	httpClient := &http.Client{
		Jar:       jar,
		Transport: a.Transport,
		Timeout:   30 * time.Second,
	}

	verifier := oauth2.GenerateVerifier()
	challenge := oauth2.S256ChallengeFromVerifier(verifier)
	state := xid.New().String()

	verificationToken, err := a.fetchVerificationToken(ctx, httpClient, state, challenge)
	if err != nil {
		return tokencache.Token{}, core.AuthenticationError{Err: err}
	}

	code, err := a.submitLogin(ctx, httpClient, verificationToken, state, challenge)
	if err != nil {
		return tokencache.Token{}, core.AuthenticationError{Err: err}
	}

	token, err := a.exchangeCode(ctx, httpClient, code, verifier)
	if err != nil {
		return tokencache.Token{}, core.AuthenticationError{Err: err}
	}

	log.Info().
		Str("user", a.Username).
		Time("expires_at", token.ExpiresAt).
		Msg("authenticated against Wolf Smartset")
	return token, nil
}

// authorizeCallback builds the ReturnUrl the identity server expects, which
// embeds the whole authorize request.
func (a *Authenticator) authorizeCallback(state, challenge string) string {
	q := url.Values{}
	q.Set("client_id", clientID)
	q.Set("redirect_uri", a.BaseURL+"/signin-callback.html")
	q.Set("response_type", "code")
	q.Set("scope", authScope)
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("response_mode", "query")
	q.Set("lang", "de-DE")
	return a.AuthURL + "/connect/authorize/callback?" + q.Encode()
}

func (a *Authenticator) fetchVerificationToken(ctx context.Context, httpClient *http.Client, state, challenge string) (string, error) {
	loginURL := a.AuthURL + "/Account/Login?ReturnUrl=" + url.QueryEscape(a.authorizeCallback(state, challenge))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating login page request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching login page: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("login page returned status %d", resp.StatusCode)
	}

	token, err := extractVerificationToken(resp.Body)
	if err != nil {
		return "", err
	}
	log.Debug().Msg("extracted request verification token from login form")
	return token, nil
}

func (a *Authenticator) submitLogin(ctx context.Context, httpClient *http.Client, verificationToken, state, challenge string) (string, error) {
	form := url.Values{}
	form.Set("Input.Username", a.Username)
	form.Set("Input.Password", a.Password)
	form.Set(verificationTokenField, verificationToken)

	postURL := a.AuthURL + "/Account/Login?ReturnUrl=" + url.QueryEscape(a.authorizeCallback(state, challenge))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting login form: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	// after following the redirects, the final URL carries the code
	code := resp.Request.URL.Query().Get("code")
	if code == "" {
		return "", fmt.Errorf("no authorization code in callback URL %q", resp.Request.URL.Redacted())
	}
	return code, nil
}

func (a *Authenticator) exchangeCode(ctx context.Context, httpClient *http.Client, code, verifier string) (tokencache.Token, error) {
	conf := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: a.BaseURL + "/signin-callback.html",
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.AuthURL + "/connect/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return tokencache.Token{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return tokencache.Token{
		Username:    a.Username,
		AccessToken: tok.AccessToken,
		ExpiresAt:   tokenExpiry(tok),
	}, nil
}

// tokenExpiry prefers the token response's expires_in. When the server
// omits it, the exp claim of the (unverified) JWT access token is used; if
// that is missing too the token counts as already expired, which just means
// the next cycle logs in again.
func tokenExpiry(tok *oauth2.Token) time.Time {
	if !tok.Expiry.IsZero() {
		return tok.Expiry
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}

	log.Warn().Msg("token response carries no expiry, treating token as expired")
	return time.Time{}
}

// extractVerificationToken pulls the anti-forgery token out of the login
// form. The page embeds it as a hidden input.
func extractVerificationToken(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing login page: %w", err)
	}

	var token string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if token != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "input" {
			var name, value string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "name":
					name = attr.Val
				case "value":
					value = attr.Val
				}
			}
			if name == verificationTokenField && value != "" {
				token = value
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if token == "" {
		return "", fmt.Errorf("login page contains no verification token")
	}
	return token, nil
}
