package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const reportColumns = `id, run_id, generated_at, region, path, body_markdown, item_count, entities`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertReport stores a generated report.
func (db *DB) InsertReport(r ReportRecord) (int64, error) {
	return insertReport(db.conn, r)
}

// InsertReportItems stores the articles listed in a report.
func (db *DB) InsertReportItems(runID string, items []ReportItem) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	if err := insertReportItems(tx, runID, items); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// RecordRun stores a report and its items in one transaction, so a failed
// item insert leaves no report row behind.
func (db *DB) RecordRun(r ReportRecord, items []ReportItem) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	if _, err := insertReport(tx, r); err != nil {
		tx.Rollback()
		return err
	}
	if err := insertReportItems(tx, r.RunID, items); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertReport(ex execer, r ReportRecord) (int64, error) {
	entities, err := json.Marshal(r.Entities)
	if err != nil {
		return 0, fmt.Errorf("encoding entities: %w", err)
	}

	result, err := ex.Exec(
		`INSERT INTO reports (run_id, generated_at, region, path, body_markdown, item_count, entities)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.GeneratedAt.UTC().Format(time.RFC3339), r.Region, r.Path, r.BodyMarkdown, r.ItemCount, string(entities),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting report: %w", err)
	}
	return result.LastInsertId()
}

func insertReportItems(ex execer, runID string, items []ReportItem) error {
	for _, it := range items {
		if _, err := ex.Exec(
			`INSERT INTO report_items (run_id, section, position, title, url) VALUES (?, ?, ?, ?, ?)`,
			runID, it.Section, it.Position, it.Title, it.URL,
		); err != nil {
			return fmt.Errorf("inserting report item: %w", err)
		}
	}
	return nil
}

// GetReport returns the report with the given run ID, or nil.
func (db *DB) GetReport(runID string) (*ReportRecord, error) {
	row := db.conn.QueryRow(`SELECT `+reportColumns+` FROM reports WHERE run_id = ?`, runID)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetLastReport returns the most recently generated report, or nil.
func (db *DB) GetLastReport() (*ReportRecord, error) {
	row := db.conn.QueryRow(`SELECT ` + reportColumns + ` FROM reports ORDER BY generated_at DESC, id DESC LIMIT 1`)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetAllReports returns all reports, newest first.
func (db *DB) GetAllReports() ([]ReportRecord, error) {
	rows, err := db.conn.Query(`SELECT ` + reportColumns + ` FROM reports ORDER BY generated_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []ReportRecord
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// GetReportItems returns the items of a report in section order.
func (db *DB) GetReportItems(runID string) ([]ReportItem, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_id, section, position, title, url FROM report_items
		WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReportItem
	for rows.Next() {
		var it ReportItem
		if err := rows.Scan(&it.ID, &it.RunID, &it.Section, &it.Position, &it.Title, &it.URL); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM reports", &s.Reports},
		{"SELECT COUNT(*) FROM report_items", &s.Items},
		{"SELECT COUNT(DISTINCT url) FROM report_items", &s.DistinctURLs},
		{"SELECT COUNT(DISTINCT region) FROM reports", &s.Regions},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*ReportRecord, error) {
	var r ReportRecord
	var generatedAt string
	var path, entities sql.NullString
	if err := row.Scan(&r.ID, &r.RunID, &generatedAt, &r.Region, &path,
		&r.BodyMarkdown, &r.ItemCount, &entities); err != nil {
		return nil, err
	}

	r.Path = path.String
	if t, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		r.GeneratedAt = t
	}
	if entities.Valid && entities.String != "" {
		if err := json.Unmarshal([]byte(entities.String), &r.Entities); err != nil {
			return nil, fmt.Errorf("decoding entities: %w", err)
		}
	}
	return &r, nil
}
