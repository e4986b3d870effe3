// Package service holds the client registry, which owns profile
// validation ahead of the client repositories.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

const maxNameLength = 25

// ClientRepository persists client profiles. Both the in-memory and the
// SQLite stores satisfy it.
type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) error
	Get(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// RegisterClientRequest represents the input for client registration.
type RegisterClientRequest struct {
	Name  string
	CPF   string
	Email string
}

// UpdateClientRequest represents a profile update. The CPF cannot change.
type UpdateClientRequest struct {
	Name  string
	Email string
}

// ClientService handles client registration and profile queries.
type ClientService struct {
	repo ClientRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(repo ClientRepository, log zerolog.Logger) *ClientService {
	return &ClientService{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("component", "clients").Logger(),
	}
}

// Register validates the request and stores a new client. The CPF is
// stored as 11 digits regardless of punctuation in the request.
func (s *ClientService) Register(ctx context.Context, req RegisterClientRequest) (*domain.Client, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	if !domain.ValidCPF(req.CPF) {
		return nil, &domain.ValidationError{Message: "cpf is invalid"}
	}
	email, err := validateEmail(req.Email)
	if err != nil {
		return nil, err
	}

	now := s.now()
	client := &domain.Client{
		ID:        uuid.New().String(),
		Name:      name,
		CPF:       domain.NormalizeCPF(req.CPF),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Returns ErrClientAlreadyExists if the CPF or email is taken.
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.log.Info().Str("client_id", client.ID).Msg("client registered")
	return client, nil
}

// Get retrieves a client by ID.
func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	return s.repo.Get(ctx, id)
}

// List returns every client, oldest first.
func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	return s.repo.List(ctx)
}

// UpdateProfile changes a client's name and email.
func (s *ClientService) UpdateProfile(ctx context.Context, id string, req UpdateClientRequest) (*domain.Client, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(req.Email)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Name = name
	client.Email = email
	client.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	s.log.Info().Str("client_id", id).Msg("client profile updated")
	return client, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		return "", &domain.ValidationError{Message: "name must have between 1 and 25 characters"}
	}
	return name, nil
}

func validateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !domain.ValidEmail(email) {
		return "", &domain.ValidationError{Message: "email is invalid"}
	}
	return email, nil
}
