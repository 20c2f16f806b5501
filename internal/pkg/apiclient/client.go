// Package apiclient is the console's single way of talking to the REST
// backend. Every reply follows the envelope convention
// {success, data, message, errors, meta}; Do unwraps data on success and
// returns an *Error otherwise. A 401 triggers one silent token refresh and
// one retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultRefreshPath  = "auth/refresh"
	DefaultTenantHeader = "X-Tenant-ID"
)

type Config struct {
	BaseURL      string
	RefreshPath  string
	TenantHeader string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// TokenKeeper persists the outcome of a refresh. A successful refresh calls
// Save with the new token; an unrecoverable 401 calls Clear.
type TokenKeeper interface {
	Save(token string)
	Clear()
}

// Request describes one logical backend call.
type Request struct {
	Path       string
	Method     string
	Payload    any
	Credential Credential
	Keeper     TokenKeeper
	// WholeBody returns the full reply instead of its "data" member.
	WholeBody bool
}

type Client struct {
	base         string
	refreshPath  string
	tenantHeader string
	http         *http.Client
	logger       *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	refresh := cfg.RefreshPath
	if refresh == "" {
		refresh = DefaultRefreshPath
	}
	tenant := cfg.TenantHeader
	if tenant == "" {
		tenant = DefaultTenantHeader
	}

	return &Client{
		base:         strings.TrimRight(cfg.BaseURL, "/"),
		refreshPath:  refresh,
		tenantHeader: tenant,
		http:         hc,
		logger:       logger,
	}
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Do performs req and returns the envelope's data (or the whole body when
// there is no data field). A 204 returns nil data. Transport errors are
// returned unchanged.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	data, err := c.send(ctx, req, req.Credential)
	if err == nil || StatusOf(err) != http.StatusUnauthorized {
		return data, err
	}

	token := TokenOf(req.Credential)
	if strings.TrimSpace(token) == "" {
		clearKeeper(req.Keeper)
		return nil, err
	}

	fresh, refreshErr := c.refresh(ctx, token)
	if refreshErr != nil {
		c.logger.Warn("token refresh failed",
			zap.String("path", req.Path),
			zap.Error(refreshErr),
		)
		clearKeeper(req.Keeper)
		return nil, err
	}

	if req.Keeper != nil {
		req.Keeper.Save(fresh)
	}
	c.logger.Debug("token refreshed, retrying request", zap.String("path", req.Path))

	data, err = c.send(ctx, req, withToken(req.Credential, fresh))
	if err != nil && StatusOf(err) == http.StatusUnauthorized {
		clearKeeper(req.Keeper)
	}
	return data, err
}

// DoInto is Do followed by decoding the data into out.
func (c *Client) DoInto(ctx context.Context, req Request, out any) error {
	data, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", req.Path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request, cred Credential) (json.RawMessage, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !allowedMethods[method] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	target, err := c.buildURL(req.Path, method, req.Payload)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var contentType string
	if method != http.MethodGet {
		body, contentType, err = encodeBody(req.Payload)
		if err != nil {
			return nil, err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-store")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if auth := BearerHeader(TokenOf(cred)); auth != "" {
		httpReq.Header.Set("Authorization", auth)
	}
	if tenant := tenantOf(cred); tenant != "" {
		httpReq.Header.Set(c.tenantHeader, tenant)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeReply(resp, req.WholeBody)
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  FieldErrors     `json:"errors"`
	Meta    json.RawMessage `json:"meta"`
}

var emptyObject = json.RawMessage(`{}`)

func decodeReply(resp *http.Response, wholeBody bool) (json.RawMessage, error) {
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if !json.Valid(raw) {
		raw = emptyObject
	}

	var env envelope
	if raw[0] == '{' {
		// a malformed envelope still counts as a plain body
		_ = json.Unmarshal(raw, &env)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || (env.Success != nil && !*env.Success) {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, &Error{
			Message: msg,
			Status:  resp.StatusCode,
			Errors:  env.Errors,
			Raw:     raw,
		}
	}

	if !wholeBody && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data, nil
	}
	return raw, nil
}

// refresh exchanges the old token for a new one at the refresh endpoint.
func (c *Client) refresh(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(c.refreshPath), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Authorization", BearerHeader(token))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var reply struct {
		Token   string          `json:"token"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(raw, &reply)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := reply.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%w: %s", ErrRefreshFailed, msg)
	}

	fresh := reply.Token
	if fresh == "" && len(reply.Data) > 0 {
		var nested struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(reply.Data, &nested); err == nil {
			fresh = nested.Token
		}
	}
	if strings.TrimSpace(fresh) == "" {
		return "", fmt.Errorf("%w: no token in reply", ErrRefreshFailed)
	}
	return fresh, nil
}

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// resolve joins a relative path to the base URL; absolute URLs pass through.
func (c *Client) resolve(path string) string {
	if absoluteURL.MatchString(path) {
		return path
	}
	clean := strings.TrimLeft(path, "/")
	if c.base == "" {
		return clean
	}
	return c.base + "/" + clean
}

func (c *Client) buildURL(path, method string, payload any) (string, error) {
	target := c.resolve(path)
	if method != http.MethodGet || isBlank(payload) {
		return target, nil
	}
	if _, isForm := payload.(*Multipart); isForm {
		return target, nil
	}

	qs, err := encodeQuery(payload)
	if err != nil {
		return "", err
	}
	if qs == "" {
		return target, nil
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + qs, nil
}

func clearKeeper(k TokenKeeper) {
	if k != nil {
		k.Clear()
	}
}

// IsTransport reports whether err came from the network rather than from a
// backend reply.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	return !errors.As(err, &apiErr) &&
		!errors.Is(err, ErrUnsupportedMethod) &&
		!errors.Is(err, ErrInvalidPayload)
}
