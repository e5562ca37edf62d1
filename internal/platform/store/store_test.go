package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRedis struct {
	pingErr error
	closed  bool
}

func (f *fakeRedis) SetNX(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}
func (f *fakeRedis) Release(context.Context, string, string) (bool, error) { return true, nil }
func (f *fakeRedis) Ping(context.Context) error                            { return f.pingErr }
func (f *fakeRedis) Close() error                                          { f.closed = true; return nil }

func TestOpenNothingEnabled(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.PG != nil || s.CH != nil || s.RDS != nil {
		t.Fatalf("expected no backends, got %+v", s)
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close on empty store: %v", err)
	}
}

func TestOpenOptionError(t *testing.T) {
	bad := func(*Store) error { return errors.New("nope") }
	if _, err := Open(context.Background(), Config{}, bad); err == nil {
		t.Fatal("expected option error")
	}
}

func TestGuardAndClose(t *testing.T) {
	r := &fakeRedis{pingErr: errors.New("down")}
	s := &Store{RDS: r}

	err := s.Guard(context.Background())
	if err == nil || err.Error() != "redis: down" {
		t.Fatalf("Guard = %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !r.closed {
		t.Fatal("redis not closed")
	}

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatal("nil store should fail Guard")
	}
}
