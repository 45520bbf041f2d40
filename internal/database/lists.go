// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pantry/internal/database/query"
	"github.com/tomtom215/pantry/internal/models"
)

const listItemColumns = `id, list_id, name, category, quantity, image_url, price,
	added_by, purchased, created_at`

// CreateList stores a list and its members. An empty ID is replaced with a new UUID.
func (db *DB) CreateList(ctx context.Context, list *models.List) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("create_list", "lists", start, err) }(time.Now())

	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO lists (id, name, completed, archived, created_at) VALUES (?, ?, ?, ?, ?)",
		list.ID, list.Name, list.Completed, list.Archived, list.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}

	seen := make(map[string]struct{}, len(list.Members))
	for _, member := range list.Members {
		if _, dup := seen[member]; dup {
			continue
		}
		seen[member] = struct{}{}
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO list_members (list_id, user_id) VALUES (?, ?)",
			list.ID, member); err != nil {
			return fmt.Errorf("failed to insert list member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit list: %w", err)
	}
	return nil
}

// GetList returns a list with its members or models.ErrNotFound
func (db *DB) GetList(ctx context.Context, listID string) (list *models.List, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("get_list", "lists", start, ignoreNotFound(err)) }(time.Now())

	list = &models.List{}
	err = db.conn.QueryRowContext(ctx,
		"SELECT id, name, completed, archived, created_at FROM lists WHERE id = ?", listID).
		Scan(&list.ID, &list.Name, &list.Completed, &list.Archived, &list.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list %s: %w", listID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	list.CreatedAt = list.CreatedAt.UTC()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT user_id FROM list_members WHERE list_id = ? ORDER BY user_id", listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list members: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	list.Members = []string{}
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("failed to scan list member: %w", err)
		}
		list.Members = append(list.Members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list members: %w", err)
	}
	return list, nil
}

// SetListStatus updates the completed and archived flags of a list
func (db *DB) SetListStatus(ctx context.Context, listID string, completed, archived bool) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("set_list_status", "lists", start, ignoreNotFound(err)) }(time.Now())

	result, err := db.conn.ExecContext(ctx,
		"UPDATE lists SET completed = ?, archived = ? WHERE id = ?", completed, archived, listID)
	if err != nil {
		return fmt.Errorf("failed to update list status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("list %s: %w", listID, models.ErrNotFound)
	}
	return nil
}

// ActiveListIDs returns the lists the user belongs to that are neither
// completed nor archived, ordered by creation time.
func (db *DB) ActiveListIDs(ctx context.Context, userID string) (ids []string, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("active_list_ids", "lists", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx, `SELECT l.id FROM lists l
		JOIN list_members m ON m.list_id = l.id
		WHERE m.user_id = ? AND NOT l.completed AND NOT l.archived
		ORDER BY l.created_at, l.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active lists: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	ids = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan list id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}
	return ids, nil
}

// AddListItem stores an unpurchased item on a list. An empty ID is replaced
// with a new UUID and a non-positive quantity becomes 1.
func (db *DB) AddListItem(ctx context.Context, item *models.ListItem) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("add_list_item", "list_items", start, err) }(time.Now())

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.Purchased = false

	_, err = db.conn.ExecContext(ctx, `INSERT INTO list_items (`+listItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ListID, item.Name, item.Category, item.Quantity, item.ImageURL,
		item.Price, item.AddedBy, item.Purchased, item.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert list item: %w", err)
	}
	return nil
}

// GetListItem returns one item of a list or models.ErrNotFound
func (db *DB) GetListItem(ctx context.Context, listID, itemID string) (item *models.ListItem, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("get_list_item", "list_items", start, ignoreNotFound(err)) }(time.Now())

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+listItemColumns+" FROM list_items WHERE list_id = ? AND id = ?", listID, itemID)
	item, err = scanListItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list item %s/%s: %w", listID, itemID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list item: %w", err)
	}
	return item, nil
}

// ListItems returns the items of a list in insertion order
func (db *DB) ListItems(ctx context.Context, listID string) (items []models.ListItem, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("list_items", "list_items", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+listItemColumns+" FROM list_items WHERE list_id = ? ORDER BY created_at, id", listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	items = []models.ListItem{}
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list items: %w", err)
	}
	return items, nil
}

// MarkPurchased flags a list item as purchased by userID at the given time.
// It returns models.ErrAlreadyPurchased, with the stored item, when the item
// was already checked off, so a purchase is never recorded twice.
func (db *DB) MarkPurchased(ctx context.Context, listID, itemID, userID string, at time.Time) (*models.ListItem, error) {
	mu := db.acquireRowLock("list_item\x00" + itemID)
	defer db.releaseRowLock(mu)

	item, err := db.GetListItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Purchased {
		return item, models.ErrAlreadyPurchased
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err = withConflictRetry(ctx, "mark_purchased", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx,
			"UPDATE list_items SET purchased = true, purchased_by = ?, purchased_at = ? WHERE list_id = ? AND id = ?",
			userID, at.UTC(), listID, itemID)
		return err
	})
	observe("mark_purchased", "list_items", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to mark item purchased: %w", err)
	}

	item.Purchased = true
	return item, nil
}

// UnpurchasedItemNames returns the distinct names of unpurchased items on the lists
func (db *DB) UnpurchasedItemNames(ctx context.Context, listIDs []string) (names []string, err error) {
	names = []string{}
	if len(listIDs) == 0 {
		return names, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("unpurchased_item_names", "list_items", start, err) }(time.Now())

	wb := query.NewWhereBuilder().
		AddIn("list_id", listIDs).
		AddClause("NOT purchased")
	whereClause, args := wb.BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT DISTINCT name FROM list_items "+whereClause+" ORDER BY name", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query list item names: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan item name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item names: %w", err)
	}
	return names, nil
}

func scanListItem(row rowScanner) (*models.ListItem, error) {
	var item models.ListItem
	if err := row.Scan(&item.ID, &item.ListID, &item.Name, &item.Category, &item.Quantity,
		&item.ImageURL, &item.Price, &item.AddedBy, &item.Purchased, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}
