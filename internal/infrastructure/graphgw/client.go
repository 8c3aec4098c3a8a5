package graphgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// Client is the full surface the rest of the system uses to talk to the
// external graph store. All traversal and mutation goes through it.
type Client interface {
	Run(ctx context.Context, stmt Statement) (*Result, error)
	MergeNode(ctx context.Context, ref NodeRef, props map[string]any) error
	Relate(ctx context.Context, from NodeRef, relType string, props map[string]any, to NodeRef) error
	DeleteRelationships(ctx context.Context, ref NodeRef) error
	DeleteNode(ctx context.Context, ref NodeRef) error
}

type Config struct {
	GatewayURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Environment  string
}

const (
	requestTimeout = 5 * time.Second

	// Tokens are reused until 5 minutes before their stated expiry.
	tokenSafetyMargin    = 5 * time.Minute
	defaultTokenLifetime = time.Hour
)

type cachedToken struct {
	value     string
	expiresAt time.Time
}

type HTTPClient struct {
	cfg    Config
	client *http.Client
	logger *log.Logger

	// Refreshing is a benign race: concurrent expired callers may each fetch
	// a token and the last store wins.
	token atomic.Pointer[cachedToken]

	now func() time.Time
}

func NewHTTPClient(cfg Config, logger *log.Logger) (*HTTPClient, error) {
	cfg.GatewayURL = strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/")
	cfg.TokenURL = strings.TrimSpace(cfg.TokenURL)
	if cfg.GatewayURL == "" || cfg.TokenURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("graph gateway credentials not configured")
	}
	if cfg.Environment == "" {
		cfg.Environment = "staging"
	}
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
		now:    time.Now,
	}, nil
}

type queryRequest struct {
	Statement   string         `json:"statement"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Environment string         `json:"environment"`
}

type queryResponse struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Error   string   `json:"error,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *HTTPClient) Run(ctx context.Context, stmt Statement) (*Result, error) {
	res, err := c.run(ctx, stmt, true)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) run(ctx context.Context, stmt Statement, allowRetry bool) (*Result, error) {
	token, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(queryRequest{
		Statement:   stmt.Text,
		Parameters:  stmt.Parameters,
		Environment: c.cfg.Environment,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized && allowRetry:
		// Cached token rejected; refresh once and retry.
		c.token.Store(nil)
		return c.run(ctx, stmt, false)
	case resp.StatusCode >= 500:
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Printf("[GraphGW] query failed status=%d body=%q", resp.StatusCode, strings.TrimSpace(string(rb)))
		}
		return nil, fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("graph gateway rejected query: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("graph gateway query error: %s", out.Error)
	}
	return &Result{Columns: out.Columns, Rows: out.Rows}, nil
}

func (c *HTTPClient) bearer(ctx context.Context) (string, error) {
	if t := c.token.Load(); t != nil && c.now().Before(t.expiresAt) {
		return t.value, nil
	}
	return c.fetchToken(ctx)
}

func (c *HTTPClient) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token fetch: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: token fetch status=%d body=%s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(rb)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: token fetch: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(tr.AccessToken) == "" {
		return "", fmt.Errorf("%w: empty access token", ErrMalformedResponse)
	}

	lifetime := defaultTokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	expiresAt := c.now().Add(lifetime - tokenSafetyMargin)
	if !expiresAt.After(c.now()) {
		// Pathologically short lifetime; keep the token for its full window.
		expiresAt = c.now().Add(lifetime)
	}

	c.token.Store(&cachedToken{value: tr.AccessToken, expiresAt: expiresAt})
	return tr.AccessToken, nil
}

func (c *HTTPClient) MergeNode(ctx context.Context, ref NodeRef, props map[string]any) error {
	stmt, err := mergeNodeStatement(ref, props)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, stmt)
	return err
}

func (c *HTTPClient) Relate(ctx context.Context, from NodeRef, relType string, props map[string]any, to NodeRef) error {
	stmt, err := relateStatement(from, relType, props, to)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, stmt)
	return err
}

func (c *HTTPClient) DeleteRelationships(ctx context.Context, ref NodeRef) error {
	stmt, err := deleteRelationshipsStatement(ref)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, stmt)
	return err
}

func (c *HTTPClient) DeleteNode(ctx context.Context, ref NodeRef) error {
	stmt, err := deleteNodeStatement(ref)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx, stmt)
	return err
}

var _ Client = (*HTTPClient)(nil)
