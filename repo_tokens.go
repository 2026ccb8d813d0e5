package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tokens persists bearer credentials keyed by digest. Rows only ever move
// from present to deleted; a revoked token value is never reused.
type Tokens interface {
	Store(ctx context.Context, userID uuid.UUID, tokenHash string) (*Token, error)
	StoreTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, tokenHash string) (*Token, error)
	ResolveOwner(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type tokensRepo struct {
	db *bun.DB
}

var _ Tokens = (*tokensRepo)(nil)

func NewTokensRepository(db *bun.DB) Tokens {
	return &tokensRepo{db: db}
}

func (a *tokensRepo) Store(ctx context.Context, userID uuid.UUID, tokenHash string) (*Token, error) {
	return a.StoreTx(ctx, a.db, userID, tokenHash)
}

func (a *tokensRepo) StoreTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, tokenHash string) (*Token, error) {
	record := &Token{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

// ResolveOwner returns the owning user id for a stored digest. A missing
// row means the token was never issued or has been revoked; callers
// translate that into ErrUnauthenticated.
func (a *tokensRepo) ResolveOwner(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	record := &Token{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.token_hash = ?", tokenHash).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrUnauthenticated
		}
		return uuid.Nil, err
	}

	return record.UserID, nil
}

func (a *tokensRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return a.RevokeAllForUserTx(ctx, a.db, userID)
}

// RevokeAllForUserTx deletes every token for the user. Idempotent, zero
// rows is success.
func (a *tokensRepo) RevokeAllForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (a *tokensRepo) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return a.db.NewSelect().
		Model((*Token)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}
