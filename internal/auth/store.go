package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserExists is returned by CreateUser when the login is already
// registered.
var ErrUserExists = errors.New("auth: user already exists")

// Store is a Postgres-backed Authenticator and user administration API.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and returns a Store. Callers should run
// RunMigrations against the same DSN before first use.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("auth: connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("auth: pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Authenticate implements Authenticator.
func (s *Store) Authenticate(ctx context.Context, nick, password string) (bool, error) {
	login := strings.ToLower(nick)

	var salt, digest string
	err := s.pool.QueryRow(ctx,
		`SELECT salt, password_digest FROM users WHERE username = $1`, login,
	).Scan(&salt, &digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: querying user %q: %w", login, err)
	}

	return DigestEqual(password, salt, digest), nil
}

// CreateUser registers a new user with a freshly generated salt.
func (s *Store) CreateUser(ctx context.Context, nick, password string) error {
	login := strings.ToLower(nick)

	salt, err := randomSalt()
	if err != nil {
		return fmt.Errorf("auth: generating salt: %w", err)
	}
	digest := Digest(password, salt)

	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (username, salt, password_digest) VALUES ($1, $2, $3)`,
		login, salt, digest,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("auth: creating user %q: %w", login, err)
	}
	slog.Info("auth: created user", "nick", login)
	return nil
}

func randomSalt() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "unique constraint")
}
