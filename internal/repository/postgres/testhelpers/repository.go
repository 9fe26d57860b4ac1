package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain/repository"
	"github.com/address-data-service/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewDocumentIndexRepositoryForTest creates a document index repository with test database and logger
func NewDocumentIndexRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.DocumentIndexRepository {
	return postgres.NewDocumentIndexRepository(NewDBForTest(db, logger))
}
