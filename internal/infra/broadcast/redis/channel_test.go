package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"hrdesk/internal/broadcast"
)

func TestDecode(t *testing.T) {
	msg, err := decode(`{"key":"hr_sync","origin":"tab-1","action":"employeeAdded","timestamp":"2024-03-01T10:00:00Z"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Key != "hr_sync" || msg.Origin != "tab-1" || msg.Action != "employeeAdded" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if _, err := decode("not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestChannelAgainstServer(t *testing.T) {
	addr := os.Getenv("HRDESK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HRDESK_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	ch := New(rdb, "hrdesk_test_sync", nil)
	t.Cleanup(func() { _ = ch.Close() })
	if err := ch.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	got := make(chan broadcast.Message, 1)
	cancel, err := ch.Subscribe(ctx, func(m broadcast.Message) { got <- m })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if err := ch.Publish(ctx, broadcast.Message{Key: "hr_sync", Origin: "other", Action: "settingsUpdated"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case m := <-got:
		if m.Action != "settingsUpdated" {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for message")
	}
}
