package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultGoogleTokenInfoURL is Google's ID token introspection endpoint.
const DefaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks a Google ID token.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// GoogleTokenVerifier verifies ID tokens against the tokeninfo endpoint.
type GoogleTokenVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

// NewGoogleTokenVerifier creates a verifier accepting tokens issued for
// clientID. An empty endpoint selects DefaultGoogleTokenInfoURL.
func NewGoogleTokenVerifier(clientID, endpoint string) *GoogleTokenVerifier {
	if endpoint == "" {
		endpoint = DefaultGoogleTokenInfoURL
	}
	return &GoogleTokenVerifier{
		clientID: clientID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

func (v *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if idToken == "" {
		return nil, errors.New("empty id token")
	}

	reqURL := v.endpoint + "?" + url.Values{"id_token": {idToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("error reading tokeninfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo returned status %d", resp.StatusCode)
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("error decoding tokeninfo response: %w", err)
	}
	if v.clientID == "" || info.Audience != v.clientID {
		return nil, errors.New("token was issued for a different client")
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return nil, errors.New("token email is not verified")
	}

	return &GoogleIdentity{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    info.Name,
	}, nil
}
