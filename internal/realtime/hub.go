// Package realtime fans stock-change events out to websocket subscribers.
// Each product has its own channel ("products.<id>"); clients subscribe to
// exactly the products they are displaying.
package realtime

import (
	"encoding/json"
	"log"
)

const EventStockUpdated = "stock.updated"

// ProductChannel names the per-product channel.
func ProductChannel(bookID string) string { return "products." + bookID }

// StockPayload is the body of a stock.updated event.
type StockPayload struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
	Title string `json:"title"`
}

// Event is the wire frame pushed to subscribers.
type Event struct {
	Event   string       `json:"event"`
	Channel string       `json:"channel"`
	Data    StockPayload `json:"data"`
}

// Client is one websocket connection. Send is drained by the connection's
// write pump; a full buffer drops the client rather than blocking the hub.
type Client struct {
	Send chan []byte
}

func NewClient() *Client {
	return &Client{Send: make(chan []byte, 32)}
}

type subscription struct {
	client  *Client
	channel string
}

type broadcastMsg struct {
	channel string
	data    []byte
}

// Hub owns all subscription state. State is touched only inside Run, so no
// locks are needed; callers talk to it through channels.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan broadcastMsg
	stop        chan struct{}

	channels map[string]map[*Client]bool
	clients  map[*Client]map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan broadcastMsg, 64),
		stop:        make(chan struct{}),
		channels:    make(map[string]map[*Client]bool),
		clients:     make(map[*Client]map[string]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = make(map[string]bool)

		case c := <-h.unregister:
			h.drop(c)

		case s := <-h.subscribe:
			if _, ok := h.clients[s.client]; !ok {
				continue
			}
			if h.channels[s.channel] == nil {
				h.channels[s.channel] = make(map[*Client]bool)
			}
			h.channels[s.channel][s.client] = true
			h.clients[s.client][s.channel] = true

		case s := <-h.unsubscribe:
			if subs := h.channels[s.channel]; subs != nil {
				delete(subs, s.client)
				if len(subs) == 0 {
					delete(h.channels, s.channel)
				}
			}
			if chans := h.clients[s.client]; chans != nil {
				delete(chans, s.channel)
			}

		case m := <-h.broadcast:
			for c := range h.channels[m.channel] {
				select {
				case c.Send <- m.data:
				default:
					// Slow consumer; cut it loose so the rest keep flowing.
					h.drop(c)
				}
			}

		case <-h.stop:
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	chans, ok := h.clients[c]
	if !ok {
		return
	}
	for ch := range chans {
		if subs := h.channels[ch]; subs != nil {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	delete(h.clients, c)
	close(c.Send)
}

func (h *Hub) Stop() { close(h.stop) }

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

func (h *Hub) Subscribe(c *Client, channel string) {
	h.subscribe <- subscription{client: c, channel: channel}
}

func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.unsubscribe <- subscription{client: c, channel: channel}
}

// Broadcast delivers a raw frame to every subscriber of channel.
func (h *Hub) Broadcast(channel string, data []byte) {
	h.broadcast <- broadcastMsg{channel: channel, data: data}
}

// PublishStock emits a stock.updated event to the product's channel.
// This is the single-node path; the redis Bridge replaces it when configured.
func (h *Hub) PublishStock(id string, stock int, title string) {
	evt := Event{Event: EventStockUpdated, Channel: ProductChannel(id), Data: StockPayload{ID: id, Stock: stock, Title: title}}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[realtime] marshal stock event: %v", err)
		return
	}
	h.Broadcast(evt.Channel, data)
}
