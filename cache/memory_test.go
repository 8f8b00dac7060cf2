package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "author", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := m.Get(ctx, "author")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemory_GetMiss(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	_, err := m.Get(context.Background(), "absent")
	if err == nil {
		t.Fatal("expected error for absent key")
	}
	if !IsMiss(err) {
		t.Errorf("IsMiss(%v) = false, want true", err)
	}
	if err.Error() != "cache miss: absent" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, "short")
	if !IsMiss(err) {
		t.Errorf("Get after expiry = %v, want miss", err)
	}
}

func TestMemory_DefaultTTL(t *testing.T) {
	m := NewMemoryWithConfig(Config{TTL: 10 * time.Millisecond, Prefix: "t:"})
	defer m.Close()
	ctx := context.Background()

	// Zero TTL picks up the configured default, negative stores forever.
	if err := m.Set(ctx, "default", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Set(ctx, "forever", []byte("v"), -1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, err := m.Get(ctx, "default"); !IsMiss(err) {
		t.Errorf("default-TTL entry still present: %v", err)
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Errorf("no-expiry entry gone: %v", err)
	}
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "author", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Delete(ctx, "author"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "author"); !IsMiss(err) {
		t.Errorf("Get after delete = %v, want miss", err)
	}
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := m.Set(ctx, key, []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if _, err := m.Get(ctx, key); !IsMiss(err) {
			t.Errorf("Get(%q) after clear = %v, want miss", key, err)
		}
	}
}

func TestMemory_CanceledContext(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Error("Set with canceled context succeeded")
	}
	if _, err := m.Get(ctx, "k"); err == nil || IsMiss(err) {
		t.Errorf("Get with canceled context = %v, want context error", err)
	}
}
