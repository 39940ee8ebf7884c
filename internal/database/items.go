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

const itemColumns = `id, owner_id, name, description, available, request_id, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }) (*models.Item, error) {
	var i models.Item
	err := row.Scan(&i.ID, &i.OwnerID, &i.Name, &i.Description, &i.Available, &i.RequestID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, opts domain.QueryOptions) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id ASC LIMIT ? OFFSET ?`
	return db.queryItems(ctx, query, ownerID, opts.Limit, opts.Offset)
}

// GetItemsByRequest returns items listed in response to the request.
func (db *DB) GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id ASC`
	return db.queryItems(ctx, query, requestID)
}

// SearchItems finds available items whose name or description contains the
// text, case-insensitively.
func (db *DB) SearchItems(ctx context.Context, text string, opts domain.QueryOptions) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (name LIKE ? COLLATE NOCASE OR description LIKE ? COLLATE NOCASE)
              ORDER BY id ASC LIMIT ? OFFSET ?`
	pattern := "%" + text + "%"
	return db.queryItems(ctx, query, pattern, pattern, opts.Limit, opts.Offset)
}

// SaveItem inserts the item when it has no id yet, otherwise updates it.
// Ownership is immutable after creation.
func (db *DB) SaveItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	now := time.Now()

	if item.ID == 0 {
		query := `INSERT INTO items (owner_id, name, description, available, request_id, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?)`
		result, err := db.ExecContext(ctx, query, item.OwnerID, item.Name, item.Description, item.Available, item.RequestID, now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create item: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}

		saved := *item
		saved.ID = id
		saved.CreatedAt = now
		saved.UpdatedAt = now
		return &saved, nil
	}

	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, now, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrItemNotFound
	}

	saved := *item
	saved.UpdatedAt = now
	return &saved, nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}
