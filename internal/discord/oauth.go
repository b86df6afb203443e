package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Identity is the subset of the Discord /users/@me payload the portal needs.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// OAuth performs the Discord authorization-code exchange.
type OAuth struct {
	apiBase      string
	clientID     string
	clientSecret string
	redirectURI  string
	http         *http.Client
}

// NewOAuth creates an OAuth helper for the given application credentials.
func NewOAuth(apiBase, clientID, clientSecret, redirectURI string) *OAuth {
	return &OAuth{
		apiBase:      apiBase,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		http:         &http.Client{Timeout: requestTimeout},
	}
}

// AuthorizeURL builds the Discord consent URL for the identify scope with the
// given anti-forgery state.
func (o *OAuth) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", o.clientID)
	q.Set("redirect_uri", o.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "identify")
	q.Set("state", state)
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code for an access token, retrying
// with exponential backoff on rate-limit responses only.
func (o *OAuth) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", o.clientID)
	form.Set("client_secret", o.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", o.redirectURI)

	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			o.apiBase+"/oauth2/token", strings.NewReader(form.Encode()))
		if err != nil {
			return "", fmt.Errorf("build token request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := o.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("token request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
		}

		var body struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("decode token response: %w", err)
		}
		if body.AccessToken == "" {
			return "", fmt.Errorf("token response missing access_token")
		}
		return body.AccessToken, nil
	}

	return "", fmt.Errorf("token exchange rate limited after %d attempts", maxAttempts)
}

// FetchIdentity retrieves the authenticated user's id and username.
func (o *OAuth) FetchIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity fetch failed: status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if id.ID == "" {
		return nil, fmt.Errorf("identity response missing id")
	}
	return &id, nil
}
