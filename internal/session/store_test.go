package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/hyperjump/autoeval/internal/models"
)

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore(10, 0)
	ds := &models.Dataset{Name: "a.csv"}
	id := s.Put(ds)
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	got, ok := s.Get(id)
	if !ok || got != ds {
		t.Fatalf("Get(%q) = %v, %v", id, got, ok)
	}
	if _, ok := s.Get("unknown"); ok {
		t.Error("expected miss for unknown id")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestMemoryStore_PutNeverOverwrites(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	n := 0
	gen := func() string {
		id := ids[n]
		n++
		return id
	}
	s := NewMemoryStore(10, 0, WithIDGenerator(gen))
	first := &models.Dataset{Name: "first"}
	second := &models.Dataset{Name: "second"}
	id1 := s.Put(first)
	id2 := s.Put(second)
	if id1 != "dup" || id2 != "fresh" {
		t.Fatalf("ids = %q, %q", id1, id2)
	}
	if got, _ := s.Get("dup"); got != first {
		t.Error("first session was overwritten")
	}
}

func TestMemoryStore_CapacityEviction(t *testing.T) {
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	s := NewMemoryStore(2, 0, WithIDGenerator(gen))
	s.Put(&models.Dataset{Name: "1"})
	s.Put(&models.Dataset{Name: "2"})
	s.Put(&models.Dataset{Name: "3"})
	if _, ok := s.Get("s1"); ok {
		t.Error("expected oldest session to be evicted")
	}
	if _, ok := s.Get("s3"); !ok {
		t.Error("expected newest session to be present")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore(0, 50*time.Millisecond)
	id := s.Put(&models.Dataset{Name: "x"})
	time.Sleep(120 * time.Millisecond)
	if _, ok := s.Get(id); ok {
		t.Error("expected session to expire")
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	s := NewMemoryStore(0, 0)
	id := s.Put(&models.Dataset{})
	if !s.Remove(id) {
		t.Error("Remove should report existing session")
	}
	if s.Remove(id) {
		t.Error("second Remove should report false")
	}
}
