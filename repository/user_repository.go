package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/samandartukhtayev/rawsock-users/database"
	"github.com/samandartukhtayev/rawsock-users/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUserNotFound is returned when no row matches the requested id
var ErrUserNotFound = errors.New("user not found")

// Store runs user queries on a single connection
type Store interface {
	Insert(ctx context.Context, name, email string) (int, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int, name, email string) (int64, error)
	Delete(ctx context.Context, id int) (int64, error)
	Close() error
}

// Gateway opens a Store for the duration of one request
type Gateway interface {
	Open(ctx context.Context) (Store, error)
}

// UserRepository handles all user-related database operations
// It hides whether connections are opened per request or pooled
type UserRepository struct {
	connector database.Connector
}

// NewUserRepository creates a new user repository
func NewUserRepository(c database.Connector) *UserRepository {
	return &UserRepository{
		connector: c,
	}
}

// EnsureSchema applies the embedded migrations. It is safe to call on a
// database that already has the users table.
func (r *UserRepository) EnsureSchema(ctx context.Context) (err error) {
	conn, err := r.connector.Primary(ctx)
	if err != nil {
		return err
	}
	defer release(conn, &err)

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, conn.DB.DB, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// release hands conn back and reports a failure through err unless an
// earlier error is already being returned
func release(conn *database.Conn, err *error) {
	if rerr := conn.Release(); rerr != nil && *err == nil {
		*err = fmt.Errorf("failed to release connection: %w", rerr)
	}
}

// Open borrows a primary connection for one request. Reads share the
// primary so a user is visible as soon as Create returns it.
func (r *UserRepository) Open(ctx context.Context) (Store, error) {
	conn, err := r.connector.Primary(ctx)
	if err != nil {
		return nil, err
	}

	return NewUserStore(conn.DB, conn.Release), nil
}

type userStore struct {
	db      *sqlx.DB
	release func() error
}

// NewUserStore runs queries on db and calls release on Close
func NewUserStore(db *sqlx.DB, release func() error) Store {
	return &userStore{db: db, release: release}
}

// Insert creates a user and returns the id assigned by the database
func (s *userStore) Insert(ctx context.Context, name, email string) (int, error) {
	query := `INSERT INTO users (name, email) VALUES ($1, $2) RETURNING id`

	var id int
	if err := s.db.QueryRowxContext(ctx, query, name, email).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// FindByID retrieves a user by id
func (s *userStore) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, name, email FROM users WHERE id = $1`

	user := &models.User{}
	if err := s.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// FindAll retrieves every user ordered by id. An empty table yields an empty,
// non-nil slice.
func (s *userStore) FindAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, name, email FROM users ORDER BY id`

	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

// Update overwrites name and email and returns the number of rows changed
func (s *userStore) Update(ctx context.Context, id int, name, email string) (int64, error) {
	query := `UPDATE users SET name = $1, email = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, name, email, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Delete removes a user and returns the number of rows removed
func (s *userStore) Delete(ctx context.Context, id int) (int64, error) {
	query := `DELETE FROM users WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Close releases the underlying connection
func (s *userStore) Close() error {
	if s.release == nil {
		return nil
	}
	return s.release()
}
