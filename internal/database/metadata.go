package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrIndexMetadataNotFound is returned when index metadata is not found
var ErrIndexMetadataNotFound = errors.New("index metadata not found")

// IndexMetadata records when and how an index was provisioned
type IndexMetadata struct {
	ID             int
	IndexName      string
	IndexType      string
	MappingVersion string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaveIndexMetadata saves or updates index metadata
func (c *Connection) SaveIndexMetadata(ctx context.Context, metadata *IndexMetadata) error {
	query := `
		INSERT INTO index_metadata
		(index_name, index_type, mapping_version, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (index_name)
		DO UPDATE SET
			index_type = EXCLUDED.index_type,
			mapping_version = EXCLUDED.mapping_version,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	now := time.Now()
	err := c.DB.QueryRowContext(ctx, query,
		metadata.IndexName,
		metadata.IndexType,
		metadata.MappingVersion,
		metadata.Status,
		now,
		now,
	).Scan(&metadata.ID)

	if err != nil {
		return fmt.Errorf("failed to save index metadata: %w", err)
	}

	return nil
}

// GetIndexMetadata retrieves metadata for an index
func (c *Connection) GetIndexMetadata(ctx context.Context, indexName string) (*IndexMetadata, error) {
	query := `
		SELECT id, index_name, index_type, mapping_version, status, created_at, updated_at
		FROM index_metadata
		WHERE index_name = $1
	`

	metadata := &IndexMetadata{}
	err := c.DB.QueryRowContext(ctx, query, indexName).Scan(
		&metadata.ID,
		&metadata.IndexName,
		&metadata.IndexType,
		&metadata.MappingVersion,
		&metadata.Status,
		&metadata.CreatedAt,
		&metadata.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIndexMetadataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get index metadata: %w", err)
	}

	return metadata, nil
}

// ListAllActiveMetadata returns all active index metadata records.
func (c *Connection) ListAllActiveMetadata(ctx context.Context) ([]*IndexMetadata, error) {
	query := `
		SELECT id, index_name, index_type, mapping_version, status, created_at, updated_at
		FROM index_metadata
		WHERE status = 'active'
		ORDER BY index_name
	`

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list index metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var metadataList []*IndexMetadata
	for rows.Next() {
		metadata := &IndexMetadata{}
		if scanErr := rows.Scan(
			&metadata.ID,
			&metadata.IndexName,
			&metadata.IndexType,
			&metadata.MappingVersion,
			&metadata.Status,
			&metadata.CreatedAt,
			&metadata.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan index metadata: %w", scanErr)
		}
		metadataList = append(metadataList, metadata)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return metadataList, nil
}

// MarkIndexDeleted marks an index as deleted without removing the record
func (c *Connection) MarkIndexDeleted(ctx context.Context, indexName string) error {
	query := `
		UPDATE index_metadata
		SET status = 'deleted', updated_at = $1
		WHERE index_name = $2
	`

	_, err := c.DB.ExecContext(ctx, query, time.Now(), indexName)
	if err != nil {
		return fmt.Errorf("failed to mark index deleted: %w", err)
	}

	return nil
}
