package kakao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrInvalidToken is returned when Kakao rejects the access token
	ErrInvalidToken = errors.New("kakao rejected the access token")

	// ErrNetworkError is returned when the Kakao API is unreachable
	ErrNetworkError = errors.New("failed to reach kakao api")
)

// Config represents the configuration for the Kakao API client
type Config struct {
	// UserInfoURL is the Kakao user-info endpoint (v2/user/me)
	UserInfoURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.UserInfoURL == "" {
		return errors.New("user info URL is required")
	}
	return nil
}

// UserInfo is the subset of the Kakao user-info response this service reads.
type UserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// Client represents a Kakao API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Kakao client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetUserInfo resolves an access token to the Kakao account behind it.
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: status %d", ErrInvalidToken, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var info UserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	if info.ID == 0 {
		return nil, fmt.Errorf("%w: empty account id", ErrInvalidToken)
	}

	return &info, nil
}
