package docusign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkflow/signbridge/internal/platform/errors"
)

const (
	jwtGrantType  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	jwtScope      = "signature impersonation"
	assertionTTL  = time.Hour
	tokenSkew     = time.Minute
	tokenEndpoint = "/oauth/token"
)

// tokenSource mints and caches JWT-grant access tokens. Tokens are reused
// until tokenSkew before expiry.
type tokenSource struct {
	cfg        Config
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(cfg Config, httpClient *http.Client) *tokenSource {
	return &tokenSource{cfg: cfg, httpClient: httpClient}
}

// Token returns a valid access token, refreshing it when needed.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiry.Add(-tokenSkew)) {
		return ts.token, nil
	}

	assertion, err := ts.assertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtGrantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ts.cfg.AuthServer+tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(errors.CodeAuthFailed, "build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.CodeAuthFailed, "token exchange failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.CodeAuthFailed, "read token response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.WithMetadata(errors.CodeAuthFailed,
			fmt.Sprintf("token exchange returned %d", resp.StatusCode),
			map[string]string{"response": string(body)})
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.Wrap(errors.CodeAuthFailed, "decode token response", err)
	}
	if payload.AccessToken == "" {
		return "", errors.New(errors.CodeAuthFailed, "token response missing access_token")
	}

	ts.token = payload.AccessToken
	ts.expiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return ts.token, nil
}

// assertion builds the signed JWT the grant exchanges for an access token.
// The audience is the auth server host without scheme.
func (ts *tokenSource) assertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.cfg.PrivateKey))
	if err != nil {
		return "", errors.Wrap(errors.CodeConfigIncomplete, "parse docusign private key", err)
	}

	audience := strings.TrimPrefix(strings.TrimPrefix(ts.cfg.AuthServer, "https://"), "http://")
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   ts.cfg.IntegrationKey,
		"sub":   ts.cfg.UserID,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
		"scope": jwtScope,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", errors.Wrap(errors.CodeAuthFailed, "sign jwt assertion", err)
	}
	return signed, nil
}
