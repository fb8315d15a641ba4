// Package repository persists shopping requests so the distribution run can
// load a request payload that was stored out-of-band by the intake endpoint.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"farebridge_backend/internal/shopping/domain"
	"farebridge_backend/platform/apperr"
)

const requestNotFoundMessage = "shopping request not found"

// Repository is the shopping-request store contract.
type Repository interface {
	Create(ctx context.Context, req domain.ShoppingRequest) error
	GetByID(ctx context.Context, flightRequestID string) (domain.ShoppingRequest, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new shopping-request repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create stores an immutable shopping request under its generated id.
func (r *Repo) Create(ctx context.Context, req domain.ShoppingRequest) error {
	query := `
		INSERT INTO shopping_requests
			(id, origin, destination, departure_date, return_date, adults, children, infants,
			 cabin_class, currency, market, ndc_only, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		req.FlightRequestID, req.Origin, req.Destination, req.DepartureDate, req.ReturnDate,
		req.Adults, req.Children, req.Infants, req.CabinClass, req.Currency, req.Market,
		req.NDCOnly, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create shopping request: %w", err)
	}
	return nil
}

// GetByID retrieves a shopping request by its flight request id.
func (r *Repo) GetByID(ctx context.Context, flightRequestID string) (domain.ShoppingRequest, error) {
	query := `
		SELECT id, origin, destination, departure_date, return_date, adults, children, infants,
		       cabin_class, currency, market, ndc_only, created_at
		FROM shopping_requests
		WHERE id = $1`

	var req domain.ShoppingRequest
	var returnDate *time.Time

	err := r.pool.QueryRow(ctx, query, flightRequestID).Scan(
		&req.FlightRequestID, &req.Origin, &req.Destination, &req.DepartureDate, &returnDate,
		&req.Adults, &req.Children, &req.Infants, &req.CabinClass, &req.Currency, &req.Market,
		&req.NDCOnly, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ShoppingRequest{}, apperr.NotFound(requestNotFoundMessage)
		}
		return domain.ShoppingRequest{}, fmt.Errorf("get shopping request by id: %w", err)
	}
	req.ReturnDate = returnDate

	return req, nil
}
