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

	"github.com/goccy/go-json"

	"github.com/tomtom215/pantry/internal/database/query"
	"github.com/tomtom215/pantry/internal/models"
)

const recordColumns = `user_id, item_name, category, image_url, frequency, confidence,
	last_purchased, purchase_history, seasonal_factors, feature_vector, similar_items,
	created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// GetRecord returns the record for (userID, itemName) or models.ErrNotFound
func (db *DB) GetRecord(ctx context.Context, userID, itemName string) (rec *models.RecommendationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("get_record", "recommendations", start, ignoreNotFound(err)) }(time.Now())

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM recommendations WHERE user_id = ? AND item_name = ?",
		userID, itemName)

	rec, err = scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s/%s: %w", userID, itemName, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// ListRecords returns all of a user's records ordered by item name
func (db *DB) ListRecords(ctx context.Context, userID string) ([]models.RecommendationRecord, error) {
	wb := query.NewWhereBuilder().AddEqual("user_id", userID)
	return db.queryRecords(ctx, "list_records", wb)
}

// ListConfidentRecords returns a user's records with confidence >= minConfidence
func (db *DB) ListConfidentRecords(ctx context.Context, userID string, minConfidence float64) ([]models.RecommendationRecord, error) {
	wb := query.NewWhereBuilder().
		AddEqual("user_id", userID).
		AddClause("confidence >= ?", minConfidence)
	return db.queryRecords(ctx, "list_confident_records", wb)
}

func (db *DB) queryRecords(ctx context.Context, operation string, wb *query.WhereBuilder) (records []models.RecommendationRecord, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe(operation, "recommendations", start, err) }(time.Now())

	whereClause, args := wb.BuildWithPrefix()
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM recommendations "+whereClause+" ORDER BY item_name",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	records = []models.RecommendationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// UpsertRecord inserts or replaces the record keyed by (UserID, ItemName).
// created_at of an existing row is kept.
func (db *DB) UpsertRecord(ctx context.Context, rec *models.RecommendationRecord) (err error) {
	mu := db.acquireRowLock(rec.UserID + "\x00" + rec.ItemName)
	defer db.releaseRowLock(mu)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("upsert_record", "recommendations", start, err) }(time.Now())

	args, err := recordArgs(rec)
	if err != nil {
		return err
	}

	return withConflictRetry(ctx, "upsert_record", func(ctx context.Context) error {
		_, err := db.conn.ExecContext(ctx, `INSERT INTO recommendations (`+recordColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, item_name) DO UPDATE SET
				category = EXCLUDED.category,
				image_url = EXCLUDED.image_url,
				frequency = EXCLUDED.frequency,
				confidence = EXCLUDED.confidence,
				last_purchased = EXCLUDED.last_purchased,
				purchase_history = EXCLUDED.purchase_history,
				seasonal_factors = EXCLUDED.seasonal_factors,
				feature_vector = EXCLUDED.feature_vector,
				similar_items = EXCLUDED.similar_items,
				updated_at = EXCLUDED.updated_at`,
			args...)
		if err != nil {
			return fmt.Errorf("failed to upsert record %s/%s: %w", rec.UserID, rec.ItemName, err)
		}
		return nil
	})
}

// UpdateSimilarItems replaces only the similar-item list of one record
func (db *DB) UpdateSimilarItems(ctx context.Context, userID, itemName string, similar []models.SimilarItem) (err error) {
	mu := db.acquireRowLock(userID + "\x00" + itemName)
	defer db.releaseRowLock(mu)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("update_similar_items", "recommendations", start, ignoreNotFound(err)) }(time.Now())

	if similar == nil {
		similar = []models.SimilarItem{}
	}
	encoded, err := json.Marshal(similar)
	if err != nil {
		return fmt.Errorf("failed to encode similar items: %w", err)
	}

	return withConflictRetry(ctx, "update_similar_items", func(ctx context.Context) error {
		result, err := db.conn.ExecContext(ctx,
			"UPDATE recommendations SET similar_items = ? WHERE user_id = ? AND item_name = ?",
			string(encoded), userID, itemName)
		if err != nil {
			return fmt.Errorf("failed to update similar items: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("record %s/%s: %w", userID, itemName, models.ErrNotFound)
		}
		return nil
	})
}

// UserItemSets returns, for every user other than excludeUserID who has a
// record for at least one of itemNames, the sorted names of all their records.
func (db *DB) UserItemSets(ctx context.Context, excludeUserID string, itemNames []string) (sets map[string][]string, err error) {
	sets = make(map[string][]string)
	if len(itemNames) == 0 {
		return sets, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("user_item_sets", "recommendations", start, err) }(time.Now())

	inner := query.NewWhereBuilder().
		AddNotEqual("user_id", excludeUserID).
		AddIn("item_name", itemNames)
	innerClause, args := inner.Build()

	rows, err := db.conn.QueryContext(ctx, `SELECT user_id, item_name FROM recommendations
		WHERE user_id IN (SELECT DISTINCT user_id FROM recommendations WHERE `+innerClause+`)
		ORDER BY user_id, item_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user item sets: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	for rows.Next() {
		var userID, itemName string
		if err := rows.Scan(&userID, &itemName); err != nil {
			return nil, fmt.Errorf("failed to scan user item: %w", err)
		}
		sets[userID] = append(sets[userID], itemName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user items: %w", err)
	}
	return sets, nil
}

func recordArgs(rec *models.RecommendationRecord) ([]interface{}, error) {
	history := rec.PurchaseHistory
	if history == nil {
		history = []models.PurchaseEntry{}
	}
	vector := rec.FeatureVector
	if vector == nil {
		vector = []float64{}
	}
	similar := rec.SimilarItems
	if similar == nil {
		similar = []models.SimilarItem{}
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase history: %w", err)
	}
	seasonalJSON, err := json.Marshal(rec.SeasonalFactors)
	if err != nil {
		return nil, fmt.Errorf("failed to encode seasonal factors: %w", err)
	}
	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feature vector: %w", err)
	}
	similarJSON, err := json.Marshal(similar)
	if err != nil {
		return nil, fmt.Errorf("failed to encode similar items: %w", err)
	}

	var lastPurchased interface{}
	if rec.LastPurchased != nil {
		lastPurchased = rec.LastPurchased.UTC()
	}

	now := time.Now().UTC()
	createdAt, updatedAt := rec.CreatedAt.UTC(), rec.UpdatedAt.UTC()
	if rec.CreatedAt.IsZero() {
		createdAt = now
	}
	if rec.UpdatedAt.IsZero() {
		updatedAt = now
	}

	return []interface{}{
		rec.UserID, rec.ItemName, rec.Category, rec.ImageURL,
		rec.Frequency, rec.Confidence, lastPurchased,
		string(historyJSON), string(seasonalJSON), string(vectorJSON), string(similarJSON),
		createdAt, updatedAt,
	}, nil
}

func scanRecord(row rowScanner) (*models.RecommendationRecord, error) {
	var (
		rec                                     models.RecommendationRecord
		lastPurchased                           sql.NullTime
		history, seasonal, vector, similarItems string
	)

	if err := row.Scan(
		&rec.UserID, &rec.ItemName, &rec.Category, &rec.ImageURL,
		&rec.Frequency, &rec.Confidence, &lastPurchased,
		&history, &seasonal, &vector, &similarItems,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if lastPurchased.Valid {
		t := lastPurchased.Time.UTC()
		rec.LastPurchased = &t
	}
	if err := json.Unmarshal([]byte(history), &rec.PurchaseHistory); err != nil {
		return nil, fmt.Errorf("failed to decode purchase history: %w", err)
	}
	if err := json.Unmarshal([]byte(seasonal), &rec.SeasonalFactors); err != nil {
		return nil, fmt.Errorf("failed to decode seasonal factors: %w", err)
	}
	if err := json.Unmarshal([]byte(vector), &rec.FeatureVector); err != nil {
		return nil, fmt.Errorf("failed to decode feature vector: %w", err)
	}
	if err := json.Unmarshal([]byte(similarItems), &rec.SimilarItems); err != nil {
		return nil, fmt.Errorf("failed to decode similar items: %w", err)
	}

	if rec.PurchaseHistory == nil {
		rec.PurchaseHistory = []models.PurchaseEntry{}
	}
	if rec.FeatureVector == nil {
		rec.FeatureVector = []float64{}
	}
	if rec.SimilarItems == nil {
		rec.SimilarItems = []models.SimilarItem{}
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()

	return &rec, nil
}

// ignoreNotFound keeps misses out of the error metrics
func ignoreNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	return err
}
