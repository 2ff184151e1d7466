package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case got, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return got
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	return nil
}

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient()
	hub.Register(client)
	hub.Subscribe(client, ProductChannel("bk-1"))

	hub.PublishStock("bk-1", 7, "Some Title")

	var evt Event
	if err := json.Unmarshal(recv(t, client), &evt); err != nil {
		t.Fatal(err)
	}
	if evt.Event != EventStockUpdated || evt.Channel != "products.bk-1" {
		t.Fatalf("frame = %+v", evt)
	}
	if evt.Data.Stock != 7 || evt.Data.ID != "bk-1" || evt.Data.Title != "Some Title" {
		t.Fatalf("payload = %+v", evt.Data)
	}
}

func TestHubScopesChannels(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := NewClient()
	b := NewClient()
	hub.Register(a)
	hub.Register(b)
	hub.Subscribe(a, ProductChannel("bk-1"))
	hub.Subscribe(b, ProductChannel("bk-2"))

	hub.PublishStock("bk-1", 3, "A")

	if got := recv(t, a); len(got) == 0 {
		t.Fatal("subscriber got nothing")
	}
	select {
	case got := <-b.Send:
		t.Fatalf("wrong-channel client received %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient()
	hub.Register(client)
	hub.Subscribe(client, ProductChannel("bk-1"))
	hub.Unsubscribe(client, ProductChannel("bk-1"))

	hub.PublishStock("bk-1", 1, "A")

	select {
	case got := <-client.Send:
		t.Fatalf("unsubscribed client received %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := NewClient()
	hub.Register(client)
	hub.Subscribe(client, ProductChannel("bk-1"))
	hub.Unregister(client)

	select {
	case _, ok := <-client.Send:
		if ok {
			t.Fatal("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on unregister")
	}
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := NewClient()
	hub.Register(slow)
	hub.Subscribe(slow, ProductChannel("bk-1"))

	// Never drained; one more than the buffer forces the drop.
	for i := 0; i <= cap(slow.Send); i++ {
		hub.PublishStock("bk-1", i, "A")
	}

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-slow.Send:
			if !ok {
				return // dropped, channel closed
			}
		case <-deadline:
			t.Fatal("slow consumer was never dropped")
		}
	}
}
