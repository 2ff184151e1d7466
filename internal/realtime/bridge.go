package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Bridge routes stock events through redis pub/sub so every node's hub sees
// them. Publishes go to redis only; the subscriber loop re-broadcasts into
// the local hub (including our own messages, via loopback), so local clients
// never see a frame twice.
type Bridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewBridge(rdb *redis.Client, hub *Hub) *Bridge {
	return &Bridge{rdb: rdb, hub: hub}
}

func (b *Bridge) PublishStock(id string, stock int, title string) {
	evt := Event{Event: EventStockUpdated, Channel: ProductChannel(id), Data: StockPayload{ID: id, Stock: stock, Title: title}}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[bridge] marshal stock event: %v", err)
		return
	}
	if err := b.rdb.Publish(context.Background(), evt.Channel, data).Err(); err != nil {
		log.Printf("[bridge] publish %s: %v", evt.Channel, err)
	}
}

// Run consumes every products.* channel and feeds frames into the local hub.
// Blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.PSubscribe(ctx, "products.*")
	defer func() { _ = sub.Close() }()

	log.Println("[bridge] listening for stock events")
	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.hub.Broadcast(msg.Channel, []byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}
