package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tokens is the opaque token repository. Lookups match on the token value,
// deletes report how many rows went away so callers can tell a consumed token
// from a live one.
type Tokens interface {
	repository.Repository[*Token]

	Issue(ctx context.Context, user *User, tokenType TokenType) (*Token, error)
	IssueTx(ctx context.Context, tx bun.IDB, user *User, tokenType TokenType) (*Token, error)

	GetByValue(ctx context.Context, value string) (*Token, error)
	GetByValueTx(ctx context.Context, tx bun.IDB, value string) (*Token, error)

	DeleteByValue(ctx context.Context, value string) (int64, error)
	DeleteByValueTx(ctx context.Context, tx bun.IDB, value string) (int64, error)

	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
	DeleteAllByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error

	DeleteAllByUserAndType(ctx context.Context, userID uuid.UUID, tokenType TokenType) error
	DeleteAllByUserAndTypeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, tokenType TokenType) error
}

type tokens struct {
	repository.Repository[*Token]
	db *bun.DB
}

var (
	_ Tokens                        = (*tokens)(nil)
	_ repository.Repository[*Token] = (*tokens)(nil)
)

func NewTokensRepository(db *bun.DB) Tokens {
	repo := repository.NewRepository[*Token](db, repository.ModelHandlers[*Token]{
		NewRecord: func() *Token { return &Token{} },
		GetID: func(t *Token) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Token, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "value"
		},
	})

	return &tokens{
		Repository: repo,
		db:         db,
	}
}

func (r *tokens) Issue(ctx context.Context, user *User, tokenType TokenType) (*Token, error) {
	return r.IssueTx(ctx, r.db, user, tokenType)
}

// IssueTx mints a fresh opaque token for the user. The value is 32 bytes of
// crypto/rand output; treat it as a bearer capability and keep it out of logs.
func (r *tokens) IssueTx(ctx context.Context, tx bun.IDB, user *User, tokenType TokenType) (*Token, error) {
	value, err := generateTokenValue()
	if err != nil {
		return nil, err
	}

	record := &Token{
		ID:     uuid.New(),
		Value:  value,
		Type:   tokenType,
		UserID: user.ID,
	}

	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *tokens) GetByValue(ctx context.Context, value string) (*Token, error) {
	return r.GetByValueTx(ctx, r.db, value)
}

func (r *tokens) GetByValueTx(ctx context.Context, tx bun.IDB, value string) (*Token, error) {
	record := &Token{}
	err := tx.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.value = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *tokens) DeleteByValue(ctx context.Context, value string) (int64, error) {
	return r.DeleteByValueTx(ctx, r.db, value)
}

func (r *tokens) DeleteByValueTx(ctx context.Context, tx bun.IDB, value string) (int64, error) {
	res, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("?TableAlias.value = ?", value).
		Exec(ctx)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *tokens) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	return r.DeleteAllByUserTx(ctx, r.db, userID)
}

func (r *tokens) DeleteAllByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *tokens) DeleteAllByUserAndType(ctx context.Context, userID uuid.UUID, tokenType TokenType) error {
	return r.DeleteAllByUserAndTypeTx(ctx, r.db, userID, tokenType)
}

func (r *tokens) DeleteAllByUserAndTypeTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, tokenType TokenType) error {
	_, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.token_type = ?", tokenType).
		Exec(ctx)
	return err
}

// generateTokenValue returns a 256 bit URL safe random string
func generateTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
