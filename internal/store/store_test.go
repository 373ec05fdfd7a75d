package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "agent.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateSession("room-1", "product-agent")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if id == "" {
		t.Fatal("empty session id")
	}

	if err := s.UpdateSessionStatus(id, "closed"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := s.UpdateSessionStatus("no-such-session", "closed"); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestSessionProducts(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateSession("room-1", "product-agent")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := s.RecordProduct(id, "prod-1", "Coffee Mug", "seller-1"); err != nil {
		t.Fatalf("record product: %v", err)
	}
	if err := s.RecordProduct(id, "prod-2", "Scarf", "seller-1"); err != nil {
		t.Fatalf("record product: %v", err)
	}
	// a different session's product must not leak in
	other, _ := s.CreateSession("room-2", "product-agent")
	if err := s.RecordProduct(other, "prod-9", "Hat", "seller-2"); err != nil {
		t.Fatalf("record product: %v", err)
	}

	got, err := s.SessionProducts(id)
	if err != nil {
		t.Fatalf("session products: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d products, want 2", len(got))
	}
	if got[0].ProductID != "prod-1" || got[1].ProductID != "prod-2" {
		t.Fatalf("products out of order: %+v", got)
	}
	if got[0].Name != "Coffee Mug" || got[0].SellerID != "seller-1" {
		t.Fatalf("record fields: %+v", got[0])
	}
}
