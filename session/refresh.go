package session

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/jrsteele09/go-course-client/internal/metrics"
	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type refreshState int

const (
	refreshIdle refreshState = iota
	refreshRunning
)

type refreshResult struct {
	access string
	err    error
}

// recoverAccess is called after a request sent with sentAccess was answered
// 401. It returns the access token to replay with, or the error to surface.
//
// A request that was sent with a credential that has since been replaced is
// replayed with the current one without a new refresh. Otherwise the caller
// starts the refresh, or joins the one already in flight.
func (c *Client) recoverAccess(ctx context.Context, sentAccess string, original *StatusError) (string, error) {
	c.mu.Lock()

	if c.state == refreshIdle {
		current := c.pair
		if current.AccessToken != "" && current.AccessToken != sentAccess {
			c.mu.Unlock()
			return current.AccessToken, nil
		}

		if !current.HasRefresh() {
			c.pair = tokens.Pair{}
			c.mu.Unlock()
			c.metrics.ObserveRefresh(metrics.RefreshNoToken)
			if err := c.repo.Clear(ctx); err != nil {
				c.log.Warn().Err(err).Msg("failed to clear stored tokens")
			}
			c.log.Info().Str("path", original.Path).Msg("session ended: no refresh token")
			return "", original
		}

		c.state = refreshRunning
		done := c.enqueue()
		c.mu.Unlock()

		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
		go func() {
			defer cancel()
			c.runRefresh(refreshCtx, current.RefreshToken)
		}()
		return c.await(ctx, done)
	}

	done := c.enqueue()
	c.mu.Unlock()
	c.metrics.ObserveRefresh(metrics.RefreshJoined)
	return c.await(ctx, done)
}

// enqueue must be called with mu held.
func (c *Client) enqueue() chan refreshResult {
	done := make(chan refreshResult, 1)
	c.waiters = append(c.waiters, done)
	return done
}

func (c *Client) await(ctx context.Context, done <-chan refreshResult) (string, error) {
	select {
	case res := <-done:
		return res.access, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// runRefresh performs the one refresh call and settles every waiter with its
// outcome. The stored pair is written or cleared before the state returns to
// IDLE.
func (c *Client) runRefresh(ctx context.Context, refreshToken string) {
	pair, err := c.callRefresh(ctx, refreshToken)
	if err != nil {
		c.metrics.ObserveRefresh(metrics.RefreshFailure)
		c.log.Warn().Err(err).Msg("token refresh failed, ending session")
		if clearErr := c.repo.Clear(ctx); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("failed to clear stored tokens")
		}
		c.settle(tokens.Pair{}, refreshResult{err: &RefreshError{Err: err}})
		return
	}

	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	c.metrics.ObserveRefresh(metrics.RefreshSuccess)
	if setErr := c.repo.Set(ctx, pair); setErr != nil {
		c.log.Warn().Err(setErr).Msg("failed to persist refreshed tokens")
	}
	c.settle(pair, refreshResult{access: pair.AccessToken})
}

func (c *Client) settle(pair tokens.Pair, res refreshResult) {
	c.mu.Lock()
	c.pair = pair
	waiters := c.waiters
	c.waiters = nil
	c.state = refreshIdle
	c.mu.Unlock()

	c.log.Debug().Int("waiters", len(waiters)).Bool("ok", res.err == nil).Msg("refresh settled")
	for _, w := range waiters {
		w <- res
	}
}

// callRefresh exchanges the refresh token for a new pair. The refresh token is
// the bearer credential and the body is an empty JSON object.
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (tokens.Pair, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RouteRefresh, bytes.NewReader([]byte("{}")))
	if err != nil {
		return tokens.Pair{}, errors.Wrap(err, "Client.callRefresh NewRequest")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(requestIDHeader, c.newRequestID())
	(&oauth2.Token{AccessToken: refreshToken, TokenType: "Bearer"}).SetAuthHeader(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(http.MethodPost, "error")
		return tokens.Pair{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokens.Pair{}, errors.Wrap(err, "Client.callRefresh ReadAll")
	}
	c.metrics.ObserveRequest(http.MethodPost, statusClass(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return tokens.Pair{}, newStatusError(http.MethodPost, RouteRefresh, resp.StatusCode, body)
	}
	pair, err := tokens.ParseTokenResponse(body)
	if err != nil {
		return tokens.Pair{}, errors.Wrap(err, "Client.callRefresh")
	}
	return pair, nil
}
