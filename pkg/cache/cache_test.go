package cache

import (
	"errors"
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New[string]()
	c.Set("key1", "value1", 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New[string]()
	c.Set("key1", "value1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New[string]()
	c.Set("key1", "value1", 1*time.Second)
	c.Delete("key1")
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string]()
	c.Set("template:1", "t1", 1*time.Second)
	c.Set("template:2", "t2", 1*time.Second)
	c.Set("templates:active", "all", 1*time.Second)
	c.Invalidate("template:")
	_, ok1 := c.Get("template:1")
	_, ok2 := c.Get("template:2")
	_, ok3 := c.Get("templates:active")
	if ok1 || ok2 {
		t.Fatalf("expected template keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected templates:active to still exist")
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[int]()
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("answer", time.Second, load)
		if err != nil || v != 42 {
			t.Fatalf("unexpected result %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected loader to run once, ran %d times", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrLoad("broken", time.Second, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, ok := c.Get("broken"); ok {
		t.Fatalf("failed loads must not be cached")
	}
}
