package orders

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Service struct {
	DB   *pgxpool.Pool
	Repo Repo
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.Repo.Get(ctx, s.DB, id)
}

// Cancel moves the order to cancelled if the state machine allows it.
// Stock release happens downstream: the caller publishes OrderCancelled
// and the fulfillment consumer compensates the reservations.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := s.Repo.UpdateStatus(ctx, tx, id, StatusCancelled); err != nil {
		return nil, err
	}
	o, err := s.Repo.Get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
