package objectstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	if err := s.Put(ctx, "core/packages/a.mhl", []byte("zip"), "application/zip"); err != nil {
		t.Fatal(err)
	}
	data, err := s.Get(ctx, "core/packages/a.mhl")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "zip" {
		t.Fatalf("data=%q", data)
	}
	if s.Types["core/packages/a.mhl"] != "application/zip" {
		t.Fatalf("content type=%q", s.Types["core/packages/a.mhl"])
	}
}

func TestMemStoreGetMissing(t *testing.T) {
	s := NewMemStore()
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemStoreListSortedByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	for _, key := range []string{"core/b.mhl.mip.json", "core/a.mhl.mip.json", "other/c.json"} {
		if err := s.Put(ctx, key, []byte("{}"), "application/json"); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.List(ctx, "core/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"core/a.mhl.mip.json", "core/b.mhl.mip.json"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys=%v, want %v", keys, want)
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NullStore{}
	if err := s.Put(ctx, "k", nil, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	keys, err := s.List(ctx, "")
	if err != nil || keys != nil {
		t.Fatalf("list=%v err=%v", keys, err)
	}
}
