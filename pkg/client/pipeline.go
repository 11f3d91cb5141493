package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/naveenspark/marquee/pkg/tokenstore"
)

// ErrNoRefreshToken means a 401 could not be recovered because no refresh
// token is stored.
var ErrNoRefreshToken = errors.New("client: no refresh token")

// doRequest sends an authenticated request. A 401 triggers at most one
// token refresh followed by exactly one retry; if the refresh fails the
// stored tokens are cleared and the original 401 is returned.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}

	access, _ := c.store.Get(tokenstore.Access)
	err = c.send(ctx, method, path, payload, access, out)
	if !IsStatus(err, http.StatusUnauthorized) {
		return err
	}

	retryToken, refreshErr := c.renewAccess(ctx, access)
	if refreshErr != nil {
		c.log.Debug().Err(refreshErr).Str("path", path).Msg("401 not recoverable")
		return err
	}
	return c.send(ctx, method, path, payload, retryToken, out)
}

// renewAccess returns an access token newer than sent. If another request
// already refreshed, its token is reused. Otherwise a refresh is issued;
// concurrent callers holding the same refresh token share one call.
func (c *Client) renewAccess(ctx context.Context, sent string) (string, error) {
	if cur, ok := c.store.Get(tokenstore.Access); ok && cur != sent {
		return cur, nil
	}
	refresh, ok := c.store.Get(tokenstore.Refresh)
	if !ok {
		return "", ErrNoRefreshToken
	}

	v, err, shared := c.refreshes.Do(refresh, func() (any, error) {
		// A refresh may have completed between the check above and Do.
		if cur, ok := c.store.Get(tokenstore.Access); ok && cur != sent {
			return cur, nil
		}
		// Not tied to the caller: a refresh other requests wait on must not
		// be abandoned because the first caller went away.
		tok, err := c.Refresh(context.WithoutCancel(ctx), refresh)
		if err != nil {
			c.invalidate(err)
			return "", err
		}
		if err := c.store.Set(tokenstore.Access, tok); err != nil {
			c.log.Warn().Err(err).Msg("store refreshed access token")
		}
		c.log.Info().Msg("access token refreshed")
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		c.log.Debug().Msg("joined in-flight token refresh")
	}
	return v.(string), nil
}

func (c *Client) invalidate(cause error) {
	c.log.Warn().Err(cause).Msg("token refresh failed, clearing session")
	for _, name := range []string{tokenstore.Access, tokenstore.Refresh} {
		if err := c.store.Clear(name); err != nil {
			c.log.Error().Err(err).Str("token", name).Msg("clear token")
		}
	}
	c.invalidated()
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return data, nil
}

// send performs one HTTP round trip with the given bearer token.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("request failed")
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", reqID).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return parseHTTPError(resp.StatusCode, respBody)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
