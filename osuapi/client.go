// Package osuapi talks to the remote lookup endpoints: username to
// numeric user id, and username to avatar image bytes.
package osuapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is an HTTP client for the lookup endpoints. All requests carry a
// bounded timeout so a dead endpoint surfaces as an error instead of a
// hang.
type Client struct {
	apiBase    string
	avatarBase string
	http       *http.Client
}

// New creates a lookup client. apiBase serves the user id lookup,
// avatarBase serves avatar images.
func New(apiBase, avatarBase string) *Client {
	return &Client{
		apiBase:    apiBase,
		avatarBase: avatarBase,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type userBasic struct {
	UserID json.Number `json:"user_id"`
}

// UserID resolves username to its numeric user id.
func (c *Client) UserID(ctx context.Context, username string) (int, error) {
	u := c.apiBase + "/getUserBasic.php?username=" + url.QueryEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("osuapi: user lookup returned %s", resp.Status)
	}

	var rows []userBasic
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, fmt.Errorf("osuapi: decode user lookup: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("osuapi: no user named %q", username)
	}

	id, err := rows[0].UserID.Int64()
	if err != nil {
		return 0, fmt.Errorf("osuapi: bad user id %q: %w", rows[0].UserID, err)
	}
	return int(id), nil
}

// Avatar fetches the avatar image for username. The caller owns the
// returned body and must close it.
func (c *Client) Avatar(ctx context.Context, username string) (io.ReadCloser, error) {
	u := c.avatarBase + "/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("osuapi: avatar fetch returned %s", resp.Status)
	}
	return resp.Body, nil
}
