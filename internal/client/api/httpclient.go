package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jpalacios/herbascan/internal/client/models"
)

// HTTPClient implements Client against the catalog's JSON/HTTP API.
// The base address is a fixed configured origin; FetchSpecimen is the one
// exception and calls the absolute URL a label supplied.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu        sync.Mutex
	tokenType string
	token     string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetAuthorization installs the token added to subsequent requests.
// An empty token clears the header.
func (c *HTTPClient) SetAuthorization(tokenType, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenType = tokenType
	c.token = token
}

func (c *HTTPClient) authorization() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return ""
	}
	tokenType := c.tokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + c.token
}

// do performs one request and returns the status code and the full body.
// Transport-level failures come back wrapped in ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, url string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth := c.authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	return resp.StatusCode, body, nil
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		Token     string          `json:"token"`
		TokenType string          `json:"tokenType"`
		User      json.RawMessage `json:"user"`
	} `json:"data"`
}

// Login exchanges credentials for a token. An application-level rejection
// (bad credentials) maps to ErrRejected with the server's message; a
// success response without usable data maps to ErrInvalidResponse.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginData, error) {
	payload := map[string]string{"email": email, "password": password}

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/auth/login", payload)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if status >= http.StatusBadRequest {
			return nil, fmt.Errorf("%w: status %d", ErrRejected, status)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !resp.Success || status >= http.StatusBadRequest {
		if resp.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Message)
		}
		return nil, ErrRejected
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}

	return &LoginData{
		Token:     resp.Data.Token,
		TokenType: resp.Data.TokenType,
		User:      resp.Data.User,
	}, nil
}

// Register creates a new account. The server's message travels back on
// rejection so the shell can show it.
func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	payload := map[string]string{"name": name, "email": email, "password": password}

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/api/auth/register", payload)
	if err != nil {
		return err
	}
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		if status >= http.StatusBadRequest {
			return fmt.Errorf("%w: status %d", ErrRejected, status)
		}
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !resp.Success || status >= http.StatusBadRequest {
		if resp.Message != "" {
			return fmt.Errorf("%w: %s", ErrRejected, resp.Message)
		}
		return ErrRejected
	}
	return nil
}

// Stats fetches the public collection statistics. Both the enveloped form
// {success, data:{...}} and the bare document are accepted.
func (c *HTTPClient) Stats(ctx context.Context) (*models.CollectionStats, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.baseURL+"/public/stats", nil)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var envelope struct {
		Data *models.CollectionStats `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var stats models.CollectionStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &stats, nil
}

// FetchSpecimen performs a single GET against the absolute URL from a
// scanned label and validates the response envelope: a 200 is not sufficient
// evidence of a usable record, the body must carry success plus
// data.specimen. No retries.
func (c *HTTPClient) FetchSpecimen(ctx context.Context, url string) (*models.SpecimenRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, status)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    *struct {
			Specimen json.RawMessage `json:"specimen"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if !resp.Success || resp.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidShape)
	}
	specimen := resp.Data.Specimen
	if len(specimen) == 0 || string(specimen) == "null" {
		return nil, fmt.Errorf("%w: missing specimen", ErrInvalidShape)
	}

	rec, err := models.DecodeSpecimen(specimen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return rec, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
