// Package store persists orgburn state: the SQLite parse cache, the project
// budget file and rate-limit templates.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed caching of extracted export records.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file, and the time zone its
// record dates were computed in.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
	Zone      string
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all cached exports.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, zone FROM exports")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Zone); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveRecords replaces the cached records of one export file.
func (c *Cache) SaveRecords(filePath, shape string, records []model.UsageRecord, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM records WHERE file_path = ?", filePath); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO exports
		(file_path, shape, record_count, mtime_ns, size_bytes, zone, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		filePath, shape, len(records), fi.MtimeNs, fi.SizeBytes, fi.Zone, now,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(file_path, seq, date, start_time, end_time, user_id, user_email,
		 project_id, api_key_id, line_item, amount_value, amount_currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		var value sql.NullFloat64
		var currency sql.NullString
		if r.Amount != nil {
			value = sql.NullFloat64{Float64: r.Amount.Value, Valid: true}
			currency = sql.NullString{String: r.Amount.Currency, Valid: true}
		}
		_, err = stmt.Exec(filePath, i, r.Date, nullInt(r.StartTime), nullInt(r.EndTime),
			r.UserID, r.UserEmail, r.ProjectID, r.APIKeyID, r.LineItem, value, currency)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecords returns the cached records of each export file, in extraction order.
func (c *Cache) LoadRecords() (map[string][]model.UsageRecord, error) {
	rows, err := c.db.Query(`SELECT
		file_path, date, start_time, end_time, user_id, user_email,
		project_id, api_key_id, line_item, amount_value, amount_currency
		FROM records ORDER BY file_path, seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]model.UsageRecord)
	for rows.Next() {
		var path string
		var r model.UsageRecord
		var date, userID, email, projectID, keyID, lineItem, currency sql.NullString
		var start, end sql.NullInt64
		var value sql.NullFloat64

		err := rows.Scan(&path, &date, &start, &end, &userID, &email,
			&projectID, &keyID, &lineItem, &value, &currency)
		if err != nil {
			return nil, err
		}

		r.Date = date.String
		r.UserID = userID.String
		r.UserEmail = email.String
		r.ProjectID = projectID.String
		r.APIKeyID = keyID.String
		r.LineItem = lineItem.String
		if start.Valid {
			v := start.Int64
			r.StartTime = &v
		}
		if end.Valid {
			v := end.Int64
			r.EndTime = &v
		}
		if value.Valid {
			r.Amount = &model.Amount{Value: value.Float64, Currency: currency.String}
		}
		result[path] = append(result[path], r)
	}
	return result, rows.Err()
}

// DeleteFile removes an export and its cached records.
func (c *Cache) DeleteFile(filePath string) error {
	_, err := c.db.Exec("DELETE FROM exports WHERE file_path = ?", filePath)
	return err
}

// RecordCount returns the number of cached records.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
