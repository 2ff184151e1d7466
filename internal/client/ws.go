package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"paperback/internal/realtime"
)

// WSSubscriber is the live connection behind a StockWatcher: it speaks the
// subscribe/unsubscribe frame protocol of the /ws endpoint and feeds
// stock.updated events to its handler.
type WSSubscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// OnEvent receives every stock.updated event from a subscribed channel.
	OnEvent func(StockUpdate)
	// OnError receives read-loop failures; the loop stops after the first one.
	OnError func(error)

	closeOnce sync.Once
	done      chan struct{}
}

// DialWS connects to the server's websocket endpoint, authenticating with
// the session token. Call Listen to start consuming events.
func DialWS(ctx context.Context, baseURL string, sess *Session) (*WSSubscriber, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ws: parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", sess.Token())
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", u.Host, err)
	}
	return &WSSubscriber{conn: conn, done: make(chan struct{})}, nil
}

type wsFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

func (s *WSSubscriber) send(action, channel string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(wsFrame{Action: action, Channel: channel})
}

func (s *WSSubscriber) Subscribe(channel string) error {
	return s.send("subscribe", channel)
}

func (s *WSSubscriber) Unsubscribe(channel string) error {
	return s.send("unsubscribe", channel)
}

// Listen consumes events until the connection drops or Close is called.
// Run it on its own goroutine.
func (s *WSSubscriber) Listen() {
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if s.OnError != nil {
				s.OnError(err)
			}
			return
		}
		var evt realtime.Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			continue
		}
		if evt.Event != realtime.EventStockUpdated {
			continue
		}
		if s.OnEvent != nil {
			s.OnEvent(StockUpdate(evt.Data))
		}
	}
}

// Close tears down the connection; Listen returns shortly after.
func (s *WSSubscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

// Done closes when the read loop has exited.
func (s *WSSubscriber) Done() <-chan struct{} { return s.done }
