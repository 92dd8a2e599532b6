// Package jobber handles the OAuth2 dance for the Jobber booking provider:
// building the authorize redirect and exchanging the callback code for
// tokens. The state parameter is a short-lived signed token so the callback
// can reject forged redirects.
package jobber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AuthorizeEndpoint = "https://api.getjobber.com/oauth/authorize"
	TokenEndpoint     = "https://api.getjobber.com/oauth/token"
)

var ErrNotConfigured = errors.New("jobber OAuth credentials not configured")

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type stateClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type OAuth struct {
	clientID      string
	clientSecret  string
	redirectURI   string
	stateSecret   string
	stateTTL      time.Duration
	tokenEndpoint string
	httpClient    *http.Client
}

func NewOAuth(clientID, clientSecret, redirectURI, stateSecret string, stateTTL time.Duration) *OAuth {
	return &OAuth{
		clientID:      clientID,
		clientSecret:  clientSecret,
		redirectURI:   redirectURI,
		stateSecret:   stateSecret,
		stateTTL:      stateTTL,
		tokenEndpoint: TokenEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (o *OAuth) Configured() bool {
	return o.clientID != "" && o.clientSecret != "" && o.redirectURI != ""
}

// AuthorizeURL builds the redirect that starts the OAuth flow.
func (o *OAuth) AuthorizeURL(sessionID string) (string, error) {
	if o.clientID == "" || o.redirectURI == "" {
		return "", ErrNotConfigured
	}

	state, err := o.signState(sessionID)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("client_id", o.clientID)
	q.Set("redirect_uri", o.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "public")
	q.Set("state", state)
	return AuthorizeEndpoint + "?" + q.Encode(), nil
}

func (o *OAuth) signState(sessionID string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(o.stateTTL)),
			Audience:  []string{"jobber-oauth"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(o.stateSecret))
}

// VerifyState checks the round-tripped state and returns the session it was
// issued for.
func (o *OAuth) VerifyState(state string) (string, error) {
	tok, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(o.stateSecret), nil
	})
	if err != nil {
		return "", err
	}
	if claims, ok := tok.Claims.(*stateClaims); ok && tok.Valid {
		return claims.SessionID, nil
	}
	return "", errors.New("invalid state token")
}

// Exchange trades the authorization code for tokens.
func (o *OAuth) Exchange(ctx context.Context, code string) (*Tokens, error) {
	if !o.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]string{
		"grant_type":    "authorization_code",
		"code":          code,
		"client_id":     o.clientID,
		"client_secret": o.clientSecret,
		"redirect_uri":  o.redirectURI,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobber token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("token exchange failed: %s", string(body))
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &tokens, nil
}
