package postgres

import (
	"context"
	"tender-docs/internal/core/port"

	"github.com/jmoiron/sqlx"
)

type sqlUnitOfWork struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewUnitOfWork(db *sqlx.DB) port.UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) querier() SQLQuerier {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *sqlUnitOfWork) DocumentRepo() port.DocumentRepository {
	return NewSqlDocumentRepository(u.querier())
}

func (u *sqlUnitOfWork) OwnerRepo() port.OwnerRepository {
	return NewSqlOwnerRepository(u.querier())
}

func (u *sqlUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	if u.tx != nil {
		// already in a transaction
		return fn(u)
	}

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	uowWithTx := &sqlUnitOfWork{db: u.db, tx: tx}

	if err := fn(uowWithTx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
