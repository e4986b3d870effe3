package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

func newTestClient(id string) *domain.Client {
	return &domain.Client{
		ID:        id,
		Name:      "Client " + id,
		CPF:       "cpf-" + id,
		Email:     id + "@example.com",
		CreatedAt: time.Now(),
	}
}

func TestClientStore_Create(t *testing.T) {
	ctx := context.Background()
	s := NewClientStore()

	if err := s.Create(ctx, newTestClient("client-1")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Duplicate ID should fail.
	if err := s.Create(ctx, newTestClient("client-1")); err != domain.ErrClientAlreadyExists {
		t.Fatalf("expected ErrClientAlreadyExists, got %v", err)
	}

	// Duplicate CPF under a new ID should fail.
	dup := newTestClient("client-2")
	dup.CPF = "cpf-client-1"
	if err := s.Create(ctx, dup); err != domain.ErrClientAlreadyExists {
		t.Fatalf("expected ErrClientAlreadyExists for CPF, got %v", err)
	}

	// Duplicate email under a new ID should fail.
	dup = newTestClient("client-3")
	dup.Email = "client-1@example.com"
	if err := s.Create(ctx, dup); err != domain.ErrClientAlreadyExists {
		t.Fatalf("expected ErrClientAlreadyExists for email, got %v", err)
	}
}

func TestClientStore_Get(t *testing.T) {
	ctx := context.Background()
	s := NewClientStore()
	_ = s.Create(ctx, newTestClient("client-1"))

	got, err := s.Get(ctx, "client-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "Client client-1" {
		t.Fatalf("expected name %q, got %q", "Client client-1", got.Name)
	}

	// Non-existent client.
	_, err = s.Get(ctx, "no-such-client")
	if err != domain.ErrClientNotFound {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientStore_List_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := NewClientStore()
	base := time.Now()
	for i, id := range []string{"c", "a", "b"} {
		c := newTestClient(id)
		c.CreatedAt = base.Add(time.Duration(i) * time.Second)
		_ = s.Create(ctx, c)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 3 || list[0].ID != "c" || list[1].ID != "a" || list[2].ID != "b" {
		t.Fatalf("unexpected order: %v", list)
	}
}

func TestClientStore_Update(t *testing.T) {
	ctx := context.Background()
	s := NewClientStore()
	_ = s.Create(ctx, newTestClient("client-1"))
	_ = s.Create(ctx, newTestClient("client-2"))

	upd := &domain.Client{ID: "client-1", Name: "Ana", Email: "ana@example.com", CPF: "ignored"}
	if err := s.Update(ctx, upd); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, _ := s.Get(ctx, "client-1")
	if got.Name != "Ana" || got.Email != "ana@example.com" {
		t.Fatalf("profile not updated: %+v", got)
	}
	if got.CPF != "cpf-client-1" {
		t.Fatalf("CPF must be immutable, got %q", got.CPF)
	}

	// The old email is released and the new one is taken.
	if err := s.Create(ctx, &domain.Client{ID: "client-3", CPF: "cpf-3", Email: "client-1@example.com"}); err != nil {
		t.Fatalf("old email should be free, got %v", err)
	}
	if err := s.Update(ctx, &domain.Client{ID: "client-2", Email: "ana@example.com"}); err != domain.ErrClientAlreadyExists {
		t.Fatalf("expected ErrClientAlreadyExists, got %v", err)
	}
	if err := s.Update(ctx, &domain.Client{ID: "nobody"}); err != domain.ErrClientNotFound {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewClientStore()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			_ = s.Create(ctx, newTestClient(id))
		}(fmt.Sprintf("client-%d", i))
		go func() {
			defer wg.Done()
			_, _ = s.List(ctx)
		}()
	}
	wg.Wait()

	list, _ := s.List(ctx)
	if len(list) != 100 {
		t.Fatalf("expected 100 clients, got %d", len(list))
	}
}

func TestClientStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewClientStore()
	_ = s.Create(ctx, newTestClient("client-1"))

	if err := s.Delete(ctx, "client-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := s.Get(ctx, "client-1"); err != domain.ErrClientNotFound {
		t.Fatalf("expected ErrClientNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "client-1"); err != domain.ErrClientNotFound {
		t.Fatalf("expected ErrClientNotFound on second delete, got %v", err)
	}

	// CPF and email are free again.
	if err := s.Create(ctx, newTestClient("client-1")); err != nil {
		t.Fatalf("expected re-registration to succeed, got %v", err)
	}
}
