package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// CountdownTick mirrors the server's countdown frame.
type CountdownTick struct {
	Eligible  bool   `json:"eligible"`
	Remaining string `json:"remaining,omitempty"`
}

// SubscribeCountdown opens the countdown stream for keyHash and
// delivers each tick to fn. It returns nil when the server reports
// eligibility and closes the stream, or the context's error when
// cancelled first.
func (c *Client) SubscribeCountdown(ctx context.Context, keyHash string, fn func(CountdownTick)) error {
	wsURL, err := c.countdownURL(keyHash)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dialing countdown stream: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var tick CountdownTick
		if err := conn.ReadJSON(&tick); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("reading countdown stream: %w", err)
		}

		fn(tick)
		if tick.Eligible {
			return nil
		}
	}
}

func (c *Client) countdownURL(keyHash string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/vault/" + url.PathEscape(keyHash) + "/countdown"
	return u.String(), nil
}
