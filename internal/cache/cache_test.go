package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestPutGetRoundTrip(t *testing.T) {
	c := New(time.Minute)

	c.Put("quote:AAPL", 123.45, time.Minute)

	v, ok := c.Get("quote:AAPL")
	if !ok {
		t.Fatal("expected hit immediately after Put")
	}
	if v.(float64) != 123.45 {
		t.Errorf("got %v, want 123.45", v)
	}
}

func TestGetMissingKey(t *testing.T) {
	c := New(time.Minute)

	if _, ok := c.Get("quote:MSFT"); ok {
		t.Error("expected miss for key never stored")
	}
}

func TestExpiry(t *testing.T) {
	c := New(time.Minute)

	// Control the clock instead of sleeping.
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("bars:AAPL:1mo:1d", "series", 30*time.Second)

	if _, ok := c.Get("bars:AAPL:1mo:1d"); !ok {
		t.Fatal("expected hit before TTL")
	}

	now = now.Add(31 * time.Second)
	if _, ok := c.Get("bars:AAPL:1mo:1d"); ok {
		t.Error("expected miss after TTL elapsed")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed on read, len=%d", c.Len())
	}
}

func TestPutReplacesEntry(t *testing.T) {
	c := New(time.Minute)

	c.Put("quote:AAPL", 100.0, time.Minute)
	c.Put("quote:AAPL", 101.0, time.Minute)

	v, ok := c.Get("quote:AAPL")
	if !ok || v.(float64) != 101.0 {
		t.Errorf("got %v %v, want fresh value 101.0", v, ok)
	}
}

func TestDefaultTTLFallback(t *testing.T) {
	c := New(time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("k", "v", 0)

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry with default TTL expired too early")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry with default TTL still present past default")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("quote:SYM%d", n%4)
			for j := 0; j < 200; j++ {
				c.Put(key, float64(j), time.Minute)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 4 {
		t.Errorf("expected 4 distinct keys, got %d", c.Len())
	}
}

func TestKeyConstruction(t *testing.T) {
	if QuoteKey("aapl") != "quote:AAPL" {
		t.Errorf("QuoteKey not canonical: %s", QuoteKey("aapl"))
	}
	if BarsKey("aapl", "1mo", "1d") == BarsKey("aapl", "1d", "1mo") {
		t.Error("period and interval must not collide in the key")
	}
	if QuoteKey("AAPL") == BarsKey("AAPL", "1d", "1d") {
		t.Error("quote and bars keys must be distinct for the same symbol")
	}
}
