package redis

import (
	"context"
	"testing"
	"time"

	"github.com/zinye/prm/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() with disabled Redis failed: %v", err)
	}
	return client
}

func TestCacheDisabledDegradesGracefully(t *testing.T) {
	cache := NewCache(disabledClient(t), "prm")
	ctx := context.Background()

	// Set and Delete are no-ops
	if err := cache.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Errorf("Set() on disabled cache = %v, want nil", err)
	}
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() on disabled cache = %v, want nil", err)
	}
	if err := cache.DeleteByPattern(ctx, "k:*"); err != nil {
		t.Errorf("DeleteByPattern() on disabled cache = %v, want nil", err)
	}

	// Get is always a miss
	var dest map[string]string
	found, err := cache.Get(ctx, "k", &dest)
	if err != nil {
		t.Errorf("Get() on disabled cache = %v, want nil", err)
	}
	if found {
		t.Error("Get() on disabled cache reported a hit")
	}
}

func TestPartnerPerformanceKey(t *testing.T) {
	key := PartnerPerformanceKey("PRT-001", "2024-01-01", "2024-06-30")
	want := "partner:performance:PRT-001:2024-01-01:2024-06-30"
	if key != want {
		t.Errorf("PartnerPerformanceKey() = %q, want %q", key, want)
	}

	pattern := PartnerPerformancePattern("PRT-001")
	if pattern != "partner:performance:PRT-001:*" {
		t.Errorf("PartnerPerformancePattern() = %q", pattern)
	}
}

func TestClientDisabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Enabled() = true for disabled client")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on disabled client = %v, want nil", err)
	}
}
