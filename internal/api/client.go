// Package api is the remote data gateway: a thin client for the StoreFlow
// HTTP API that attaches the bearer token and maps transport failures to
// classified error kinds.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sadopc/storeflow/internal/activity"
)

// DefaultTimeout matches the API's slowest documented call (profile update).
const DefaultTimeout = 10 * time.Second

// User is the shopkeeper identity returned by the auth endpoints.
type User struct {
	ShopName  string `json:"shopName"`
	OwnerName string `json:"ownerName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// RegisterRequest is the registration payload. The confirmation password
// is validated client-side and never sent.
type RegisterRequest struct {
	ShopName  string `json:"shopName"`
	OwnerName string `json:"ownerName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// ProfileUpdate carries the editable identity fields. Email is immutable
// and deliberately absent.
type ProfileUpdate struct {
	ShopName  string `json:"shopName"`
	OwnerName string `json:"ownerName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// AuthResponse is the result of a successful login or registration.
type AuthResponse struct {
	Token string
	User  User
}

// Client issues authenticated calls against one API base URL.
type Client struct {
	base string
	hc   *http.Client
}

// New returns a client for baseURL. A non-positive timeout falls back to
// DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: baseURL,
		hc:   &http.Client{Timeout: timeout},
	}
}

type authEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message"`
}

type profileEnvelope struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Message string `json:"message"`
}

// Login exchanges credentials for a token. A 400/401 response is an
// invalid-credentials rejection rather than an expired session.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &env); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
			return AuthResponse{}, &Error{
				Kind:    KindInvalidCredentials,
				Status:  apiErr.Status,
				Message: messageOr(apiErr.Message, "Invalid email or password"),
			}
		}
		return AuthResponse{}, err
	}
	return AuthResponse{Token: env.Token, User: env.User}, nil
}

// Register creates a shopkeeper account. A 409 response means the account
// already exists.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (AuthResponse, error) {
	var env authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", reg, &env); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return AuthResponse{}, &Error{
				Kind:    KindDuplicateAccount,
				Status:  apiErr.Status,
				Message: messageOr(apiErr.Message, "An account with this email already exists"),
			}
		}
		return AuthResponse{}, err
	}
	return AuthResponse{Token: env.Token, User: env.User}, nil
}

// FetchOrders returns the shop's orders via GET /api/orders.
func (c *Client) FetchOrders(ctx context.Context, token string) ([]activity.Order, error) {
	var env struct {
		Success bool             `json:"success"`
		Data    []activity.Order `json:"data"`
		Message string           `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", token, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateProfile replaces the editable identity fields via
// PUT /api/auth/profile and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields ProfileUpdate) (User, error) {
	var env profileEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", token, fields, &env); err != nil {
		return User{}, err
	}
	return env.User, nil
}

// do performs one JSON request/response cycle, classifying failures.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "Failed to read response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindNetwork, Message: "Malformed response from server"}
		}
	}
	return nil
}

func classifyTransport(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "Request timeout. Please check your internet connection."}
	}
	return &Error{Kind: KindNetwork, Message: "Could not reach the server. Please try again."}
}

func classifyStatus(status int, body []byte) error {
	msg := serverMessage(body)

	switch {
	case status == http.StatusUnauthorized:
		return &Error{
			Kind:    KindUnauthorized,
			Status:  status,
			Message: messageOr(msg, "Session expired. Please log in again."),
		}
	case status >= 500:
		return &Error{
			Kind:    KindServer,
			Status:  status,
			Message: messageOr(msg, "Server error. Please try again later."),
		}
	default:
		return &Error{
			Kind:    KindNetwork,
			Status:  status,
			Message: messageOr(msg, fmt.Sprintf("Request failed (HTTP %d)", status)),
		}
	}
}

// serverMessage pulls the message field out of an error envelope, if any.
func serverMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
