package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/projectpulse/backend/internal/config"
	"github.com/projectpulse/backend/pkg/logger"
)

// IdentityService talks to the third-party identity provider's management
// API using a machine-to-machine access token. The token is cached in
// memory and in a file so it survives restarts; it is refetched only after
// its expiry passes. The refresh is mutex-guarded so concurrent callers
// share a single fetch, though a duplicate issuance would only waste one
// round trip.
type IdentityService struct {
	cfg    *config.IdentityConfig
	client *http.Client

	mu    sync.Mutex
	token string
}

func NewIdentityService(cfg *config.IdentityConfig) *IdentityService {
	return &IdentityService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// tokenAlive checks the token's exp claim without verifying the signature;
// the provider signed it and we only use the claim to schedule a refresh.
func tokenAlive(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}

// Token returns a valid machine-to-machine access token, trying memory,
// then the cache file, then the provider's token endpoint.
func (s *IdentityService) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && tokenAlive(s.token) {
		return s.token, nil
	}

	if s.cfg.TokenCacheFile != "" {
		if data, err := os.ReadFile(s.cfg.TokenCacheFile); err == nil {
			cached := strings.TrimSpace(string(data))
			if cached != "" && tokenAlive(cached) {
				logger.Infof("[Identity] reading the m2m access token from the cache file")
				s.token = cached
				return s.token, nil
			}
		}
	}

	logger.Infof("[Identity] loading the m2m access token from the management api")
	token, err := s.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	s.token = token

	if s.cfg.TokenCacheFile != "" {
		if err := os.WriteFile(s.cfg.TokenCacheFile, []byte(token), 0600); err != nil {
			// The cache file only saves a refetch after restart.
			logger.Warnf("[Identity] unable to write the token cache file: %v", err)
		}
	}

	return s.token, nil
}

func (s *IdentityService) fetchToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     s.cfg.ClientID,
		"client_secret": s.cfg.ClientSecret,
		"audience":      fmt.Sprintf("https://%s/api/v2/", s.cfg.Domain),
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://%s/oauth/token", s.cfg.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	return result.AccessToken, nil
}

func (s *IdentityService) managementRequest(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	url := fmt.Sprintf("https://%s/api/v2/%s", s.cfg.Domain, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return s.client.Do(req)
}

// GetUser fetches the provider's record for a user.
func (s *IdentityService) GetUser(ctx context.Context, userID string) (map[string]interface{}, error) {
	resp, err := s.managementRequest(ctx, http.MethodGet, "users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("management api returned status %d", resp.StatusCode)
	}

	var user map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserMetadata patches a user's metadata at the provider.
func (s *IdentityService) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	resp, err := s.managementRequest(ctx, http.MethodPatch, "users/"+userID, metadata)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("management api returned status %d", resp.StatusCode)
	}
	return nil
}
