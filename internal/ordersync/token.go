package ordersync

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
)

// expirySkew renews the token slightly before NetSuite invalidates it.
const expirySkew = 60 * time.Second

// TokenSource exchanges a PS256-signed client assertion for a NetSuite
// OAuth2 access token and caches it until shortly before expiry.
type TokenSource struct {
	cfg        config.NetSuiteConfig
	httpClient *http.Client
	tokenURL   string
	privateKey *rsa.PrivateKey

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource loads the signing key and prepares the token endpoint. The
// tokenURL override is used by tests; empty selects the account's endpoint.
func NewTokenSource(cfg config.NetSuiteConfig, httpClient *http.Client, tokenURL string) (*TokenSource, error) {
	if cfg.AccountID == "" || cfg.ConsumerKey == "" || cfg.CertificateID == "" {
		return nil, fmt.Errorf("netsuite account, consumer key, and certificate id are required")
	}
	if cfg.PrivateKeyPath == "" {
		return nil, fmt.Errorf("netsuite private key path is required")
	}
	pem, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading netsuite private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing netsuite private key: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if tokenURL == "" {
		tokenURL = fmt.Sprintf("https://%s.suitetalk.api.netsuite.com/services/rest/auth/oauth2/v1/token", cfg.AccountID)
	}
	return &TokenSource{
		cfg:        cfg,
		httpClient: httpClient,
		tokenURL:   tokenURL,
		privateKey: key,
	}, nil
}

// Token returns a valid access token, reusing the cached one when possible.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expires) {
		return t.token, nil
	}

	assertion, err := t.clientAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_assertion_type", "urn:ietf:params:oauth:client-assertion-type:jwt-bearer")
	form.Set("client_assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl <= expirySkew {
		ttl = expirySkew + time.Second
	}
	t.token = payload.AccessToken
	t.expires = time.Now().Add(ttl - expirySkew)
	return t.token, nil
}

// clientAssertion signs the one-hour NetSuite client credentials JWT.
func (t *TokenSource) clientAssertion() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   t.cfg.ConsumerKey,
		"scope": []string{"restlets", "rest_webservices"},
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"aud":   t.tokenURL,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodPS256, claims)
	token.Header["kid"] = t.cfg.CertificateID

	signed, err := token.SignedString(t.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing client assertion: %w", err)
	}
	return signed, nil
}
