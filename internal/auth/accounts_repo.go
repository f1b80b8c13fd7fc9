package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arisefit/hunterhub/internal/telemetry/tracing"
)

const uniqueViolationCode = "23505"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username taken")
)

// Account links a login to its character.
type Account struct {
	Username     string
	PasswordHash string
	CharacterID  string
	CreatedAt    time.Time
}

type AccountsRepo struct {
	db *pgxpool.Pool
}

func NewAccountsRepo(db *pgxpool.Pool) *AccountsRepo {
	return &AccountsRepo{db: db}
}

func (r *AccountsRepo) Create(ctx context.Context, account Account) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "accountsRepo.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO hunter_account (username, password_hash, character_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		account.Username, account.PasswordHash, account.CharacterID, account.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return ErrUsernameTaken
	}
	return err
}

func (r *AccountsRepo) Get(ctx context.Context, username string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "accountsRepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var account Account
	err = r.db.QueryRow(ctx,
		`SELECT username, password_hash, character_id, created_at
		FROM hunter_account WHERE username = $1`,
		username,
	).Scan(&account.Username, &account.PasswordHash, &account.CharacterID, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
