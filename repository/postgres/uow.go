package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crowdvault/backend/repository"
)

// NewSet builds a repository set over the given querier (pool or transaction).
func NewSet(db querier) repository.Set {
	return repository.Set{
		Campaigns:    NewCampaignRepository(db),
		Rounds:       NewRoundRepository(db),
		Certificates: NewCertificateRepository(db),
		DAO:          NewDAOStateRepository(db),
		Proposals:    NewProposalRepository(db),
		Escrows:      NewEscrowRepository(db),
	}
}

type unitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork returns a pgx-transaction-backed UnitOfWork.
func NewUnitOfWork(pool *pgxpool.Pool) repository.UnitOfWork {
	return &unitOfWork{pool: pool}
}

func (u *unitOfWork) Within(ctx context.Context, fn func(tx repository.Set) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(NewSet(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
