//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/samandartukhtayev/rawsock-users/config"
	"github.com/samandartukhtayev/rawsock-users/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type UserRepositoryIntegrationTestSuite struct {
	suite.Suite
	ctx  context.Context
	pgc  *postgres.PostgresContainer
	repo *UserRepository
}

func (s *UserRepositoryIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("users"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.pgc = pgc

	connStr, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	cfg := config.DefaultConfig()
	cfg.DatabaseURL = connStr

	connector, err := database.New(s.ctx, cfg)
	require.NoError(s.T(), err)

	s.repo = NewUserRepository(connector)
	require.NoError(s.T(), s.repo.EnsureSchema(s.ctx))
}

func (s *UserRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.pgc != nil {
		_ = s.pgc.Terminate(s.ctx)
	}
}

func (s *UserRepositoryIntegrationTestSuite) SetupTest() {
	store, err := s.repo.Open(s.ctx)
	require.NoError(s.T(), err)
	defer store.Close()

	_, err = store.(*userStore).db.ExecContext(s.ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(s.T(), err)
}

func (s *UserRepositoryIntegrationTestSuite) TestEnsureSchemaIsIdempotent() {
	assert.NoError(s.T(), s.repo.EnsureSchema(s.ctx))
}

func (s *UserRepositoryIntegrationTestSuite) TestLifecycle() {
	t := s.T()

	store, err := s.repo.Open(s.ctx)
	require.NoError(t, err)
	defer store.Close()

	users, err := store.FindAll(s.ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	id, err := store.Insert(s.ctx, "Ann", "ann@x.io")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	other, err := store.Insert(s.ctx, "Bob", "bob@x.io")
	require.NoError(t, err)

	n, err := store.Update(s.ctx, id, "Ann2", "ann2@x.io")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	user, err := store.FindByID(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann2", user.Name)
	assert.Equal(t, "ann2@x.io", user.Email)

	untouched, err := store.FindByID(s.ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "Bob", untouched.Name)

	n, err = store.Delete(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Delete(s.ctx, id)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.FindByID(s.ctx, id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(UserRepositoryIntegrationTestSuite))
}
