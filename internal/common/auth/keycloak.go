// internal/common/auth/keycloak.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"accelerator-portal/internal/common/errors"
)

// KeycloakClient creates applicant identities through the Keycloak admin API.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// User represents a user in Keycloak.
type User struct {
	ID            string       `json:"id,omitempty"`
	Email         string       `json:"email"`
	FirstName     string       `json:"firstName"`
	LastName      string       `json:"lastName"`
	Username      string       `json:"username"`
	Enabled       bool         `json:"enabled"`
	EmailVerified bool         `json:"emailVerified"`
	Credentials   []Credential `json:"credentials,omitempty"`
}

type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateIdentity registers email/password and returns the Keycloak user id. When the
// email is already registered the existing id is returned, so a retried job converges.
func (k *KeycloakClient) CreateIdentity(ctx context.Context, email, password, firstName, lastName string) (string, error) {
	user := &User{
		Email:     email,
		Username:  email,
		FirstName: firstName,
		LastName:  lastName,
		Enabled:   true,
		Credentials: []Credential{
			{Type: "password", Value: password, Temporary: false},
		},
	}

	id, err := k.createUser(ctx, user)
	if err == nil {
		return id, nil
	}
	if se, ok := err.(*errors.StandardError); ok && se.Metadata["status"] == http.StatusConflict {
		existing, lookupErr := k.GetUserByEmail(ctx, email)
		if lookupErr != nil {
			return "", lookupErr
		}
		return existing.ID, nil
	}
	return "", err
}

func (k *KeycloakClient) createUser(ctx context.Context, user *User) (string, error) {
	token, err := k.token(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal user: %w", err)
	}

	userURL := fmt.Sprintf("%s/admin/realms/%s/users", k.baseURL, k.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, userURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build create user request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", errors.NewIdentityProviderError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", k.apiError(resp, "create user")
	}

	// The id is only returned in the Location header.
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.NewIdentityProviderError("create user: missing Location header")
	}
	parts := strings.Split(strings.TrimSuffix(location, "/"), "/")
	return parts[len(parts)-1], nil
}

// GetUserByEmail retrieves a user by their email address.
func (k *KeycloakClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	token, err := k.token(ctx)
	if err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/admin/realms/%s/users?email=%s&exact=true", k.baseURL, k.realm, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewIdentityProviderError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, k.apiError(resp, "search user")
	}

	var users []User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, errors.NewIdentityProviderError("decode search results: " + err.Error())
	}
	if len(users) == 0 {
		return nil, errors.NewNotFoundError("identity", email)
	}
	return &users[0], nil
}

// token returns a cached client-credentials access token, refreshing it shortly before
// expiry.
func (k *KeycloakClient) token(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.accessToken != "" && time.Now().Before(k.tokenExpiry) {
		return k.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", k.baseURL, k.realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", errors.NewIdentityProviderError("token request: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", k.apiError(resp, "token")
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", errors.NewIdentityProviderError("decode token: " + err.Error())
	}

	k.accessToken = tr.AccessToken
	k.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - 10*time.Second)
	return k.accessToken, nil
}

func (k *KeycloakClient) apiError(resp *http.Response, op string) *errors.StandardError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	se := errors.NewIdentityProviderError(fmt.Sprintf("%s: status %d: %s", op, resp.StatusCode, string(body)))
	se.Retryable = isTransientHTTPError(resp.StatusCode)
	se.Metadata = map[string]interface{}{"status": resp.StatusCode}
	return se
}

func isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
