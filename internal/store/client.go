package store

import (
	"context"
	"sort"
	"sync"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// ClientStore is a thread-safe in-memory store for clients, keyed by
// client ID with secondary uniqueness indexes on CPF and email.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]domain.Client
	byCPF   map[string]string // cpf → client id
	byEmail map[string]string // email → client id
}

// NewClientStore creates an empty ClientStore.
func NewClientStore() *ClientStore {
	return &ClientStore{
		clients: make(map[string]domain.Client),
		byCPF:   make(map[string]string),
		byEmail: make(map[string]string),
	}
}

// Create adds a client to the store. It returns
// domain.ErrClientAlreadyExists if the ID, CPF or email is taken.
func (s *ClientStore) Create(_ context.Context, c *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ID]; exists {
		return domain.ErrClientAlreadyExists
	}
	if _, exists := s.byCPF[c.CPF]; exists {
		return domain.ErrClientAlreadyExists
	}
	if _, exists := s.byEmail[c.Email]; exists {
		return domain.ErrClientAlreadyExists
	}
	s.clients[c.ID] = *c
	s.byCPF[c.CPF] = c.ID
	s.byEmail[c.Email] = c.ID
	return nil
}

// Get retrieves a copy of a client by ID. It returns
// domain.ErrClientNotFound if the client does not exist.
func (s *ClientStore) Get(_ context.Context, id string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

// List returns all clients ordered by creation time.
func (s *ClientStore) List(_ context.Context) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update replaces a stored client's profile. The CPF is immutable; a new
// email must not belong to another client.
func (s *ClientStore) Update(_ context.Context, c *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.clients[c.ID]
	if !ok {
		return domain.ErrClientNotFound
	}
	if owner, taken := s.byEmail[c.Email]; taken && owner != c.ID {
		return domain.ErrClientAlreadyExists
	}

	delete(s.byEmail, current.Email)
	s.byEmail[c.Email] = c.ID
	c.CPF = current.CPF
	c.CreatedAt = current.CreatedAt
	s.clients[c.ID] = *c
	return nil
}

// Delete removes a client and frees its CPF and email. It returns
// domain.ErrClientNotFound if the client does not exist.
func (s *ClientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	delete(s.byCPF, c.CPF)
	delete(s.byEmail, c.Email)
	delete(s.clients, id)
	return nil
}
