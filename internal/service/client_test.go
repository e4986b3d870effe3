package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/store"
)

func newTestClientService() *ClientService {
	return NewClientService(store.NewClientStore(), zerolog.Nop())
}

func TestRegister_Success(t *testing.T) {
	svc := newTestClientService()

	client, err := svc.Register(context.Background(), RegisterClientRequest{
		Name:  "  Ana Souza ",
		CPF:   "529.982.247-25",
		Email: "Ana@Example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.ID == "" {
		t.Error("expected a generated client id")
	}
	if client.Name != "Ana Souza" {
		t.Errorf("got name %q, want %q", client.Name, "Ana Souza")
	}
	if client.CPF != "52998224725" {
		t.Errorf("got cpf %q, want %q", client.CPF, "52998224725")
	}
	if client.Email != "ana@example.com" {
		t.Errorf("got email %q, want %q", client.Email, "ana@example.com")
	}
	if client.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := svc.Get(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("unexpected error on get: %v", err)
	}
	if got.CPF != client.CPF {
		t.Errorf("stored cpf %q, want %q", got.CPF, client.CPF)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterClientRequest
	}{
		{"empty name", RegisterClientRequest{Name: " ", CPF: "52998224725", Email: "a@example.com"}},
		{"name too long", RegisterClientRequest{Name: strings.Repeat("a", 26), CPF: "52998224725", Email: "a@example.com"}},
		{"short cpf", RegisterClientRequest{Name: "Ana", CPF: "5299822472", Email: "a@example.com"}},
		{"bad check digit", RegisterClientRequest{Name: "Ana", CPF: "52998224724", Email: "a@example.com"}},
		{"repeated digits", RegisterClientRequest{Name: "Ana", CPF: "11111111111", Email: "a@example.com"}},
		{"bad email", RegisterClientRequest{Name: "Ana", CPF: "52998224725", Email: "ana.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestClientService()
			_, err := svc.Register(context.Background(), tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("got error %v, want ValidationError", err)
			}
		})
	}
}

func TestRegister_NameOfMaxLengthAccepted(t *testing.T) {
	svc := newTestClientService()

	// Multi-byte characters count once each.
	name := strings.Repeat("ç", maxNameLength)
	if _, err := svc.Register(context.Background(), RegisterClientRequest{
		Name: name, CPF: "52998224725", Email: "a@example.com",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegister_DuplicateCPFOrEmail(t *testing.T) {
	svc := newTestClientService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterClientRequest{Name: "Ana", CPF: "52998224725", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}

	_, err = svc.Register(ctx, RegisterClientRequest{Name: "Bia", CPF: "529.982.247-25", Email: "bia@example.com"})
	if !errors.Is(err, domain.ErrClientAlreadyExists) {
		t.Errorf("duplicate cpf: got error %v, want ErrClientAlreadyExists", err)
	}

	_, err = svc.Register(ctx, RegisterClientRequest{Name: "Bia", CPF: "11144477735", Email: "ANA@example.com"})
	if !errors.Is(err, domain.ErrClientAlreadyExists) {
		t.Errorf("duplicate email: got error %v, want ErrClientAlreadyExists", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestClientService()

	_, err := svc.Get(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("got error %v, want ErrClientNotFound", err)
	}
}

func TestList_OrderedByRegistration(t *testing.T) {
	svc := newTestClientService()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := svc.Register(ctx, RegisterClientRequest{Name: "Ana", CPF: "52998224725", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Register(ctx, RegisterClientRequest{Name: "Bia", CPF: "11144477735", Email: "bia@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d clients, want 2", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("got order [%s %s], want [%s %s]", list[0].ID, list[1].ID, first.ID, second.ID)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestClientService()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	client, err := svc.Register(ctx, RegisterClientRequest{Name: "Ana", CPF: "52998224725", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := created.Add(time.Hour)
	svc.now = func() time.Time { return updated }
	got, err := svc.UpdateProfile(ctx, client.ID, UpdateClientRequest{Name: "Ana Souza", Email: "ana.souza@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ana Souza" || got.Email != "ana.souza@example.com" {
		t.Errorf("got profile %q <%s>, want %q <%s>", got.Name, got.Email, "Ana Souza", "ana.souza@example.com")
	}
	if got.CPF != "52998224725" {
		t.Errorf("cpf changed to %q", got.CPF)
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("got updated_at %v, want %v", got.UpdatedAt, updated)
	}

	stored, err := svc.Get(ctx, client.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Errorf("created_at changed to %v", stored.CreatedAt)
	}
	if stored.Email != "ana.souza@example.com" {
		t.Errorf("stored email %q", stored.Email)
	}
}

func TestUpdateProfile_Errors(t *testing.T) {
	svc := newTestClientService()
	ctx := context.Background()

	ana, err := svc.Register(ctx, RegisterClientRequest{Name: "Ana", CPF: "52998224725", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterClientRequest{Name: "Bia", CPF: "11144477735", Email: "bia@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, ana.ID, UpdateClientRequest{Name: "Ana", Email: "bia@example.com"})
	if !errors.Is(err, domain.ErrClientAlreadyExists) {
		t.Errorf("taken email: got error %v, want ErrClientAlreadyExists", err)
	}

	_, err = svc.UpdateProfile(ctx, "nonexistent", UpdateClientRequest{Name: "Ana", Email: "x@example.com"})
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("missing client: got error %v, want ErrClientNotFound", err)
	}

	var ve *domain.ValidationError
	_, err = svc.UpdateProfile(ctx, ana.ID, UpdateClientRequest{Name: "", Email: "ana@example.com"})
	if !errors.As(err, &ve) {
		t.Errorf("empty name: got error %v, want ValidationError", err)
	}
}
