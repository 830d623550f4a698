package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

type openFunc func(t *testing.T, clock *fakeClock) Store

func newStores() map[string]openFunc {
	return map[string]openFunc{
		"memory": func(t *testing.T, clock *fakeClock) Store {
			m := NewMemory()
			m.now = clock.Now
			return m
		},
		"sqlite": func(t *testing.T, clock *fakeClock) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "hub", "store.db"))
			if err != nil {
				t.Fatalf("NewSQLite() error = %v", err)
			}
			s.now = clock.Now
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_SetGet(t *testing.T) {
	for name, open := range newStores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t, &fakeClock{t: time.Unix(1000, 0)})

			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Errorf("Get(missing) = ok %v, err %v", ok, err)
			}

			if err := s.Set(ctx, "key", "v1", time.Time{}); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, "key", "v2", time.Time{}); err != nil {
				t.Fatalf("Set() overwrite error = %v", err)
			}

			v, ok, err := s.Get(ctx, "key")
			if err != nil || !ok || v != "v2" {
				t.Errorf("Get(key) = %q, %v, %v; want v2", v, ok, err)
			}
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	for name, open := range newStores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			clock := &fakeClock{t: time.Unix(1000, 0)}
			s := open(t, clock)

			_ = s.Set(ctx, "short", "x", clock.t.Add(time.Second))
			_ = s.Set(ctx, "forever", "y", time.Time{})

			if _, ok, _ := s.Get(ctx, "short"); !ok {
				t.Fatal("entry expired early")
			}

			clock.t = clock.t.Add(time.Second)

			if _, ok, _ := s.Get(ctx, "short"); ok {
				t.Error("expired entry still returned")
			}
			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatalf("Keys() error = %v", err)
			}
			if !reflect.DeepEqual(keys, []string{"forever"}) {
				t.Errorf("Keys() = %v, want [forever]", keys)
			}
		})
	}
}

func TestStore_DeleteClearKeys(t *testing.T) {
	for name, open := range newStores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t, &fakeClock{t: time.Unix(1000, 0)})

			for _, k := range []string{"c", "a", "b", "d"} {
				_ = s.Set(ctx, k, k, time.Time{})
			}

			if err := s.Delete(ctx, "b", "d", "nope"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			keys, _ := s.Keys(ctx)
			if !reflect.DeepEqual(keys, []string{"a", "c"}) {
				t.Errorf("Keys() = %v, want [a c]", keys)
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			keys, _ = s.Keys(ctx)
			if keys == nil || len(keys) != 0 {
				t.Errorf("Keys() after clear = %#v, want empty non-nil", keys)
			}
		})
	}
}

func TestStore_Ping(t *testing.T) {
	for name, open := range newStores() {
		t.Run(name, func(t *testing.T) {
			s := open(t, &fakeClock{t: time.Now()})
			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	_ = m.Close()

	ctx := context.Background()
	if err := m.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() error = %v, want ErrClosed", err)
	}
	if err := m.Set(ctx, "k", "v", time.Time{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() error = %v, want ErrClosed", err)
	}
	if _, err := m.Keys(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Keys() error = %v, want ErrClosed", err)
	}
}

func TestSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	_ = s.Set(ctx, "k", "v", time.Time{})
	_ = s.Close()

	s, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Get() after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestSQLite_PingAfterClose(t *testing.T) {
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	_ = s.Close()

	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() after close = nil, want error")
	}
}
