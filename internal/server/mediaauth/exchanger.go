// Package mediaauth brokers OAuth token grants with the media provider on
// behalf of clients, so the client secret never leaves the server.
package mediaauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
)

// Token is the provider's grant response in the shape clients consume.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// TokenExchanger performs the two grant flows the service proxies.
type TokenExchanger interface {
	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*Token, error)

	// Refresh trades a refresh token for a fresh access token. The returned
	// Token always carries a usable refresh token, even when the provider
	// omits one from its response.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
}

// HTTPExchanger implements TokenExchanger against the provider's token
// endpoint using client-credential basic auth.
type HTTPExchanger struct {
	client       *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURI  string
	log          logging.Logger
}

func NewHTTPExchanger(client *http.Client, tokenURL, clientID, clientSecret, redirectURI string, log logging.Logger) *HTTPExchanger {
	return &HTTPExchanger{
		client:       client,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		log:          log.With("component", "media_auth"),
	}
}

func (e *HTTPExchanger) Exchange(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", e.redirectURI)

	return e.post(ctx, form)
}

func (e *HTTPExchanger) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	token, err := e.post(ctx, form)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

func (e *HTTPExchanger) post(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("media auth request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(e.clientID, e.clientSecret)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: media token endpoint unreachable", common.ErrorUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.log.Warn(ctx, "token grant rejected", "status", resp.StatusCode, "grant_type", form.Get("grant_type"))
		return nil, fmt.Errorf("%w: media token endpoint returned %d", common.ErrorUpstream, resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%w: malformed token response", common.ErrorUpstream)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access token", common.ErrorUpstream)
	}
	return &token, nil
}
