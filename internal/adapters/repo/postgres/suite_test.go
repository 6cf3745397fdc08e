package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RepoSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
}

func TestRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test, needs docker")
	}
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = tcpostgres.Run(
		s.ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("drukuje3d_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)

	connStr, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = gorm.Open(gormpg.Open(connStr), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	s.Require().NoError(err)
	s.Require().NoError(Migrate(s.db))
}

func (s *RepoSuite) TearDownSuite() {
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.T().Logf("terminate postgres container: %v", err)
		}
	}
}

func (s *RepoSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE order_items, orders, pricing_tiers, images, products, settings, push_subscriptions, users, verification_tokens CASCADE").Error)
}
