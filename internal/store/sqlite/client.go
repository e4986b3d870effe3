package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// ClientStore persists clients in the clients table.
type ClientStore struct {
	db *DB
}

// NewClientStore creates a ClientStore backed by db.
func NewClientStore(db *DB) *ClientStore {
	return &ClientStore{db: db}
}

// Create inserts a client. It returns domain.ErrClientAlreadyExists if
// the ID, CPF or email is taken.
func (s *ClientStore) Create(ctx context.Context, c *domain.Client) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM clients WHERE id = ? OR cpf = ? OR email = ?`,
			c.ID, c.CPF, c.Email).Scan(&n)
		if err != nil {
			return fmt.Errorf("failed to check client uniqueness: %w", err)
		}
		if n > 0 {
			return domain.ErrClientAlreadyExists
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO clients (id, name, cpf, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.CPF, c.Email, toUnix(c.CreatedAt), toUnix(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert client: %w", err)
		}
		return nil
	})
}

// Get returns the client with the given ID or domain.ErrClientNotFound.
func (s *ClientStore) Get(ctx context.Context, id string) (*domain.Client, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT id, name, cpf, email, created_at, updated_at FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return c, nil
}

// List returns all clients ordered by creation time.
func (s *ClientStore) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, name, cpf, email, created_at, updated_at FROM clients ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update replaces the client's name, email and updated_at. The CPF is
// immutable; a new email must not belong to another client.
func (s *ClientStore) Update(ctx context.Context, c *domain.Client) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx, `SELECT id FROM clients WHERE email = ?`, c.Email).Scan(&owner)
		switch {
		case err == nil && owner != c.ID:
			return domain.ErrClientAlreadyExists
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("failed to check client email: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE clients SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
			c.Name, c.Email, toUnix(c.UpdatedAt), c.ID)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		if n == 0 {
			return domain.ErrClientNotFound
		}
		return nil
	})
}

// Delete removes a client that owns no portfolio. It returns
// domain.ErrClientNotFound if the client does not exist and
// domain.ErrClientHasPortfolios if a portfolio still references it.
func (s *ClientStore) Delete(ctx context.Context, id string) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM clients
			WHERE id = ? AND NOT EXISTS (SELECT 1 FROM portfolios WHERE client_id = ?)`, id, id)
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		if n > 0 {
			return nil
		}

		var exists int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up client: %w", err)
		}
		if exists == 0 {
			return domain.ErrClientNotFound
		}
		return domain.ErrClientHasPortfolios
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*domain.Client, error) {
	var c domain.Client
	var created, updated int64
	if err := row.Scan(&c.ID, &c.Name, &c.CPF, &c.Email, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = fromUnix(created)
	c.UpdatedAt = fromUnix(updated)
	return &c, nil
}
