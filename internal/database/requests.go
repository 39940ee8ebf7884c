package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"renthub/internal/domain"
	"renthub/internal/models"
)

const requestColumns = `id, requester_id, description, created_at`

func scanRequest(row interface{ Scan(...interface{}) error }) (*models.ItemRequest, error) {
	var r models.ItemRequest
	err := row.Scan(&r.ID, &r.RequesterID, &r.Description, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveRequest inserts a new item request. Requests are immutable after
// creation.
func (db *DB) SaveRequest(ctx context.Context, req *models.ItemRequest) (*models.ItemRequest, error) {
	now := time.Now()

	query := `INSERT INTO item_requests (requester_id, description, created_at) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, req.RequesterID, req.Description, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	saved := *req
	saved.ID = id
	saved.CreatedAt = now
	return &saved, nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM item_requests WHERE id = ?`
	req, err := scanRequest(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item request: %w", err)
	}
	return req, nil
}

// GetRequestsByRequester returns the user's own requests, newest first.
func (db *DB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM item_requests
              WHERE requester_id = ? ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query, requesterID)
}

// GetRequestsExcluding returns other users' requests, newest first.
func (db *DB) GetRequestsExcluding(ctx context.Context, requesterID int64, opts domain.QueryOptions) ([]*models.ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM item_requests
              WHERE requester_id != ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, requesterID, opts.Limit, opts.Offset)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
