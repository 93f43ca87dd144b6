// Package httpapi implements the api contracts over the storefront backend's
// JSON/HTTP endpoints.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/internal/config"
)

var (
	_ api.AuthAPI = (*Client)(nil)
	_ api.CartAPI = (*Client)(nil)
)

// Client talks to the storefront backend. Two underlying HTTP clients are
// held: a retrying one for idempotent calls (token revocation) and a
// single-attempt one for everything that mutates state, so a network timeout
// can never double-submit a login, refresh rotation, or cart mutation.
type Client struct {
	baseURL string
	retry   *retryablehttp.Client
	direct  *retryablehttp.Client
	log     zerolog.Logger
}

// ClientOption modifies a Client at construction time.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying http.Client on both transports
// (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.retry.HTTPClient = hc
		c.direct.HTTPClient = hc
	}
}

// NewClient creates a Client from config.
func NewClient(cfg config.APIConfig, log zerolog.Logger, options ...ClientOption) *Client {
	timeout := time.Duration(cfg.GetHTTPTimeoutSeconds()) * time.Second

	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.GetHTTPRetryMax()
	retry.HTTPClient.Timeout = timeout
	retry.Logger = leveledLogger{log}

	direct := retryablehttp.NewClient()
	direct.RetryMax = 0
	direct.HTTPClient.Timeout = timeout
	direct.Logger = leveledLogger{log}

	c := &Client{
		baseURL: cfg.GetAPIBaseURL(),
		retry:   retry,
		direct:  direct,
		log:     log,
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// Login implements api.AuthAPI.
func (c *Client) Login(ctx context.Context, creds api.Credentials) (*api.LoginResult, error) {
	var res api.LoginResult
	err := c.doJSON(ctx, c.direct, http.MethodPost, "/api/v1/auth/login", creds, &res, func(status int) error {
		if status == http.StatusUnauthorized {
			return api.InvalidCredentialsErr
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login]")
	}
	return &res, nil
}

// RefreshTokenExchange implements api.AuthAPI.
func (c *Client) RefreshTokenExchange(ctx context.Context, refreshToken string) (*api.RefreshResult, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var res api.RefreshResult
	err := c.doJSON(ctx, c.direct, http.MethodPost, "/api/v1/auth/refresh", body, &res, func(status int) error {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			return api.InvalidRefreshTokenErr
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.RefreshTokenExchange]")
	}
	return &res, nil
}

// LogoutRevoke implements api.AuthAPI. Revocation is idempotent server-side,
// so this call rides the retrying transport.
func (c *Client) LogoutRevoke(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	err := c.doJSON(ctx, c.retry, http.MethodPost, "/api/v1/auth/logout", body, nil, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.LogoutRevoke]")
	}
	return nil
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CartAdd implements api.CartAPI.
func (c *Client) CartAdd(ctx context.Context, productID, variantID string, quantity int) (*api.ConfirmedLine, error) {
	req := cartItemRequest{ProductID: productID, VariantID: variantID, Quantity: quantity}
	var line api.ConfirmedLine
	err := c.doJSON(ctx, c.direct, http.MethodPost, "/api/v1/cart/items", req, &line, cartStatusErr)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.CartAdd]")
	}
	return &line, nil
}

// CartUpdate implements api.CartAPI. The server answers quantity 0 with
// 204 No Content; that surfaces as a nil line.
func (c *Client) CartUpdate(ctx context.Context, productID, variantID string, quantity int) (*api.ConfirmedLine, error) {
	req := cartItemRequest{ProductID: productID, VariantID: variantID, Quantity: quantity}
	var line api.ConfirmedLine
	err := c.doJSON(ctx, c.direct, http.MethodPut, "/api/v1/cart/items", req, &line, cartStatusErr)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.CartUpdate]")
	}
	if line.ProductID == "" {
		return nil, nil
	}
	return &line, nil
}

func cartStatusErr(status int) error {
	switch status {
	case http.StatusConflict:
		return api.OutOfStockErr
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return api.ValidationErr
	}
	return nil
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// doJSON issues one JSON request and decodes the response into out (which
// may be nil). statusErr maps known non-2xx statuses onto sentinel errors;
// any unmapped failure becomes api.RemoteErr.
func (c *Client) doJSON(ctx context.Context, hc *retryablehttp.Client, method, path string, body, out any, statusErr func(int) error) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return errors.Wrapf(api.RemoteErr, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request complete")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrapf(api.RemoteErr, "%s %s: decode response: %v", method, path, err)
		}
		return nil
	}

	detail := readErrorBody(resp.Body)
	if statusErr != nil {
		if mapped := statusErr(resp.StatusCode); mapped != nil {
			if detail != "" {
				return errors.Wrap(mapped, detail)
			}
			return mapped
		}
	}
	return errors.Wrapf(api.RemoteErr, "%s %s: status %d %s", method, path, resp.StatusCode, detail)
}

func readErrorBody(r io.Reader) string {
	var eb errorBody
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&eb); err != nil || eb.Error == "" {
		return ""
	}
	if eb.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", eb.Error, eb.ErrorDescription)
	}
	return eb.Error
}

// leveledLogger adapts zerolog to retryablehttp's logging interface.
type leveledLogger struct {
	log zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
