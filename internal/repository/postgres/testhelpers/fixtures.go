package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
)

// GetDocumentSize returns the indexed size of a seeded document
func GetDocumentSize(db *sql.DB, areaID int64) (int64, error) {
	var size int64
	err := db.QueryRowContext(context.Background(),
		"SELECT size FROM seeded_documents WHERE area_id = $1", areaID).Scan(&size)
	if err != nil {
		return 0, fmt.Errorf("get document size for area %d: %w", areaID, err)
	}
	return size, nil
}
