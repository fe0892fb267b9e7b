package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists customers. Token is write-only from the domain's point
// of view: it is set by SetToken and matched by FindByToken, never returned.
type Repository interface {
	GetOrCreate(ctx context.Context, phone, username string) (Customer, error)
	FindByPhone(ctx context.Context, phone string) (Customer, error)
	FindByToken(ctx context.Context, token string) (Customer, error)
	SetToken(ctx context.Context, id, token string) error
	UpdateUsername(ctx context.Context, id, username string) (Customer, error)
}

// row mirrors the customers table.
type row struct {
	ID        uuid.UUID
	Phone     string
	Username  string
	Token     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r row) toEntity() Customer {
	return Customer{
		ID:        r.ID.String(),
		Phone:     r.Phone,
		Username:  r.Username,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

const customerColumns = `id, phone, username, token, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed customer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate inserts the customer unless the phone is already known, and
// returns the stored row either way.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, phone, username string) (Customer, error) {
	now := time.Now().UTC()
	q := `INSERT INTO customers (id, phone, username, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
        RETURNING ` + customerColumns
	return r.scanOne(r.db.QueryRow(ctx, q, uuid.New(), phone, username, now))
}

// FindByPhone fetches a customer by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE phone = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, phone))
}

// FindByToken fetches the customer currently holding token.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (Customer, error) {
	if token == "" {
		return Customer{}, ErrNotFound
	}
	q := `SELECT ` + customerColumns + ` FROM customers WHERE token = $1`
	return r.scanOne(r.db.QueryRow(ctx, q, token))
}

// SetToken replaces the customer's bearer token in a single statement.
func (r *PostgresRepository) SetToken(ctx context.Context, id, token string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE customers SET token = $1, updated_at = $2 WHERE id = $3`,
		token, time.Now().UTC(), customerID)
	if err != nil {
		return fmt.Errorf("set customer token: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUsername stores a new username and returns the updated customer.
func (r *PostgresRepository) UpdateUsername(ctx context.Context, id, username string) (Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return Customer{}, ErrNotFound
	}
	q := `UPDATE customers SET username = $1, updated_at = $2 WHERE id = $3 RETURNING ` + customerColumns
	return r.scanOne(r.db.QueryRow(ctx, q, username, time.Now().UTC(), customerID))
}

func (r *PostgresRepository) scanOne(s pgx.Row) (Customer, error) {
	var rec row
	if err := s.Scan(&rec.ID, &rec.Phone, &rec.Username, &rec.Token, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("scan customer: %w", err)
	}
	return rec.toEntity(), nil
}
