package session

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/servant/pkg/db"
)

// Migrations holds the goose migrations creating the users and sessions tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations.
const MigrationsDir = "migrations"

// foreign_key_violation
const pgForeignKeyViolation = "23503"

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps sessions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var (
	_ Store     = (*PostgresStore)(nil)
	_ Rotator   = (*PostgresStore)(nil)
	_ UserStore = (*PostgresStore)(nil)
)

// NewPostgresStore creates a store backed by pool.
// Apply Migrations with db.Migrate before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const loadQuery = `
SELECT s.user_id, s.auth_status, s.ip_address, s.session_data,
       s.login_time, s.last_activity_time,
       u.login, u.name, u.permissions
  FROM sessions s
  JOIN users u ON u.user_id = s.user_id
 WHERE s.sid = $1`

func (p *PostgresStore) Load(ctx context.Context, token string) (*Record, error) {
	rec := &Record{Token: token}
	var status int16
	err := p.pool.QueryRow(ctx, loadQuery, token).Scan(
		&rec.UserID, &status, &rec.IP, &rec.Data,
		&rec.LoginTime, &rec.LastActiveAt,
		&rec.Login, &rec.Name, &rec.Permissions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: load: %w", err)
	}
	rec.AuthStatus = AuthStatus(status)
	return rec, nil
}

const insertQuery = `
INSERT INTO sessions (sid, auth_status, user_id, ip_address, session_data, login_time, last_activity_time)
VALUES ($1, $2, $3, $4, $5, LOCALTIMESTAMP, LOCALTIMESTAMP)`

func (p *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	return insertRecord(ctx, p.pool, rec)
}

func insertRecord(ctx context.Context, q execer, rec *Record) error {
	if rec.Token == "" || rec.UserID == "" {
		return ErrInvalidSession
	}
	_, err := q.Exec(ctx, insertQuery, rec.Token, int16(rec.AuthStatus), rec.UserID, rec.IP, rec.Data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrUserNotFound
		}
		return fmt.Errorf("session: insert: %w", err)
	}
	return nil
}

const updateQuery = `
UPDATE sessions
   SET auth_status = $1,
       session_data = $2,
       last_activity_time = LOCALTIMESTAMP
 WHERE sid = $3
   AND user_id = $4`

func (p *PostgresStore) Update(ctx context.Context, token, userID string, status AuthStatus, data []byte) (int64, error) {
	tag, err := p.pool.Exec(ctx, updateQuery, int16(status), data, token, userID)
	if err != nil {
		return 0, fmt.Errorf("session: update: %w", err)
	}
	return tag.RowsAffected(), nil
}

const deleteQuery = `DELETE FROM sessions WHERE sid = $1`

func (p *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := p.pool.Exec(ctx, deleteQuery, token); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// Rotate replaces oldToken with rec inside a transaction.
func (p *PostgresStore) Rotate(ctx context.Context, oldToken string, rec *Record) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteQuery, oldToken); err != nil {
			return fmt.Errorf("session: delete: %w", err)
		}
		return insertRecord(ctx, tx, rec)
	})
}

const upsertUserQuery = `
INSERT INTO users (user_id, login, name, permissions)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE
   SET login = EXCLUDED.login,
       name = EXCLUDED.name,
       permissions = EXCLUDED.permissions`

// PutUser creates or replaces a user.
func (p *PostgresStore) PutUser(ctx context.Context, u User) error {
	if u.ID == "" {
		return ErrInvalidSession
	}
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	if _, err := p.pool.Exec(ctx, upsertUserQuery, u.ID, u.Login, u.Name, perms); err != nil {
		return fmt.Errorf("session: put user: %w", err)
	}
	return nil
}

const userByLoginQuery = `SELECT user_id, login, name, permissions FROM users WHERE login = $1`

func (p *PostgresStore) UserByLogin(ctx context.Context, login string) (*User, error) {
	var u User
	err := p.pool.QueryRow(ctx, userByLoginQuery, login).Scan(&u.ID, &u.Login, &u.Name, &u.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("session: user by login: %w", err)
	}
	return &u, nil
}
