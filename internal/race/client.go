package race

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hello97-gg/hallotype/internal/model"
)

// Client is one player's connection to the race server. Progress offers
// are throttled; everything else is sent as-is.
type Client struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	throttle *Throttle
	events   chan Envelope

	closeOnce sync.Once
}

// Dial connects to a race server and starts the receive loop. serverURL is
// the ws:// or wss:// base address.
func Dial(ctx context.Context, serverURL, playerID, displayName string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("bad server url: %w", err)
	}
	u.Path = "/ws"
	q := u.Query()
	q.Set("uid", playerID)
	q.Set("username", displayName)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial race server: %w", err)
	}
	if resp != nil && resp.Body != nil {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}

	c := &Client{
		conn:   conn,
		events: make(chan Envelope, 16),
	}
	c.throttle = NewThrottle(PublishInterval, c.sendProgress)
	go c.readLoop()
	return c, nil
}

// Events delivers server pushes. The channel closes when the connection
// drops or Close is called.
func (c *Client) Events() <-chan Envelope {
	return c.events
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		select {
		case c.events <- env:
		default:
			// A stalled consumer only ever misses intermediate room
			// states, never its own sends.
		}
	}
}

func (c *Client) send(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(env)
}

func (c *Client) sendProgress(u Update) {
	if err := c.send(Envelope{Type: MsgProgress, Update: &u, Time: time.Now()}); err != nil {
		// The read loop surfaces the dead connection.
		_ = err
	}
}

// CreateRoom asks the server for a fresh room with this client as host.
func (c *Client) CreateRoom(timeLimit int, tier model.Tier) error {
	return c.send(Envelope{Type: MsgCreateRoom, TimeLimit: timeLimit, Tier: tier})
}

// JoinRoom joins an existing room by its shareable code.
func (c *Client) JoinRoom(code string) error {
	return c.send(Envelope{Type: MsgJoinRoom, RoomID: code})
}

// StartRoom requests the waiting-to-running transition. Host only.
func (c *Client) StartRoom() error {
	return c.send(Envelope{Type: MsgStartRoom})
}

// LeaveRoom departs the current room.
func (c *Client) LeaveRoom() error {
	return c.send(Envelope{Type: MsgLeaveRoom})
}

// ReportTimeout tells the server this client's shared timer expired.
func (c *Client) ReportTimeout() error {
	return c.send(Envelope{Type: MsgTimeout})
}

// OfferProgress submits a progress sample through the throttle. At most
// one publish goes out per interval; rapid offers coalesce to the newest.
func (c *Client) OfferProgress(u Update) {
	c.throttle.Offer(u)
}

// ReportFinished bypasses the throttle: completion must not be coalesced
// away or delayed behind a window.
func (c *Client) ReportFinished(u Update) error {
	u.Status = model.PlayerFinished
	u.Progress = 100
	return c.send(Envelope{Type: MsgProgress, Update: &u, Time: time.Now()})
}

// Close cancels any pending trailing publish and drops the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.throttle.Close()
		err = c.conn.Close()
	})
	return err
}
