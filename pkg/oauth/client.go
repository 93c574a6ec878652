package oauth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"loyalty-platform/pkg/config"
)

// Identity is the provider-verified identity of a customer
type Identity struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// Client talks to the external identity providers to verify ID tokens.
// Customers never authenticate with a password; a valid provider token is
// the only credential the platform accepts for them.
type Client struct {
	cfg        *config.OAuthConfig
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// googleTokenInfo is the relevant slice of Google's tokeninfo response
type googleTokenInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Error   string `json:"error_description"`
}

// appleTokenInfo is the relevant slice of Apple's token response
type appleTokenInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Error string `json:"error"`
}

// NewClient creates an OAuth verification client
func NewClient(cfg *config.OAuthConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		Logger: logger,
	}
}

// VerifyGoogleToken verifies a Google ID token and returns the identity
func (c *Client) VerifyGoogleToken(idToken string) (*Identity, error) {
	endpoint := fmt.Sprintf("%s?id_token=%s", c.cfg.GoogleTokenInfoURL, url.QueryEscape(idToken))

	var info googleTokenInfo
	if err := c.fetchJSON(endpoint, &info); err != nil {
		c.Logger.Warn("Google token verification failed", zap.Error(err))
		return nil, fmt.Errorf("invalid google token: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("invalid google token: %s", info.Error)
	}

	return &Identity{
		Provider:   "google",
		ProviderID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
		AvatarURL:  info.Picture,
	}, nil
}

// VerifyAppleToken verifies an Apple identity token and returns the identity
func (c *Client) VerifyAppleToken(identityToken string) (*Identity, error) {
	endpoint := fmt.Sprintf("%s?id_token=%s", c.cfg.AppleTokenInfoURL, url.QueryEscape(identityToken))

	var info appleTokenInfo
	if err := c.fetchJSON(endpoint, &info); err != nil {
		c.Logger.Warn("Apple token verification failed", zap.Error(err))
		return nil, fmt.Errorf("invalid apple token: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("invalid apple token: %s", info.Error)
	}

	// Apple does not always return a display name with the token
	name := "Apple User"
	if info.Email != "" {
		name = strings.SplitN(info.Email, "@", 2)[0]
	}

	return &Identity{
		Provider:   "apple",
		ProviderID: info.Sub,
		Email:      info.Email,
		Name:       name,
	}, nil
}

func (c *Client) fetchJSON(endpoint string, out interface{}) error {
	resp, err := c.HTTPClient.Get(endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(body, out)
}
