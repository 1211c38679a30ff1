package database

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/TobiSchelling/TennisDigest/internal/curate"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testReport(runID string, at time.Time) ReportRecord {
	return ReportRecord{
		RunID:        runID,
		GeneratedAt:  at,
		Region:       "UK",
		Path:         "reports/tennis_report_" + runID + ".md",
		BodyMarkdown: "# Report " + runID,
		ItemCount:    2,
		Entities: curate.EntityBundle{
			Players:     []string{"Alcaraz"},
			Tournaments: []string{"Wimbledon"},
			Tags:        []string{"final"},
		},
	}
}

func TestInsertAndGetReport(t *testing.T) {
	db := openTestDB(t)
	at := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	id, err := db.InsertReport(testReport("run-1", at))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero report ID")
	}

	r, err := db.GetReport("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected report")
	}
	if !r.GeneratedAt.Equal(at) {
		t.Errorf("expected generated_at %v, got %v", at, r.GeneratedAt)
	}
	if r.BodyMarkdown != "# Report run-1" || r.ItemCount != 2 || r.Region != "UK" {
		t.Errorf("unexpected report %+v", r)
	}
	if !reflect.DeepEqual(r.Entities.Players, []string{"Alcaraz"}) {
		t.Errorf("expected entities round trip, got %+v", r.Entities)
	}
}

func TestGetReportMissing(t *testing.T) {
	db := openTestDB(t)
	r, err := db.GetReport("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Error("expected nil for missing report")
	}
}

func TestInsertDuplicateRunID(t *testing.T) {
	db := openTestDB(t)
	at := time.Now()
	if _, err := db.InsertReport(testReport("dup", at)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.InsertReport(testReport("dup", at)); err == nil {
		t.Error("expected error for duplicate run id")
	}
}

func TestReportsOrderedNewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	db.InsertReport(testReport("old", base))
	db.InsertReport(testReport("new", base.Add(48*time.Hour)))
	db.InsertReport(testReport("mid", base.Add(24*time.Hour)))

	all, err := db.GetAllReports()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(all))
	}
	if all[0].RunID != "new" || all[2].RunID != "old" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].RunID, all[1].RunID, all[2].RunID)
	}

	last, err := db.GetLastReport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last == nil || last.RunID != "new" {
		t.Errorf("expected last report 'new', got %+v", last)
	}
}

func TestGetLastReportEmpty(t *testing.T) {
	db := openTestDB(t)
	last, err := db.GetLastReport()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if last != nil {
		t.Error("expected nil on empty database")
	}
}

func TestReportItems(t *testing.T) {
	db := openTestDB(t)
	db.InsertReport(testReport("run-1", time.Now()))

	items := []ReportItem{
		{Section: "stars", Position: 1, Title: "A", URL: "https://a.com"},
		{Section: "gear", Position: 1, Title: "B", URL: "https://b.com"},
		{Section: "gear", Position: 2, Title: "A again", URL: "https://a.com"},
	}
	if err := db.InsertReportItems("run-1", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.GetReportItems("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if got[1].Section != "gear" || got[1].Title != "B" || got[1].RunID != "run-1" {
		t.Errorf("unexpected item %+v", got[1])
	}
}

func TestReportItemsRequireReport(t *testing.T) {
	db := openTestDB(t)
	err := db.InsertReportItems("missing", []ReportItem{{Section: "stars", Position: 1, Title: "A", URL: "https://a.com"}})
	if err == nil {
		t.Error("expected foreign key error")
	}
}

func TestRecordRun(t *testing.T) {
	db := openTestDB(t)
	items := []ReportItem{
		{Section: "stars", Position: 1, Title: "A", URL: "https://a.com"},
		{Section: "gear", Position: 1, Title: "B", URL: "https://b.com"},
	}
	if err := db.RecordRun(testReport("run-1", time.Now()), items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := db.GetReportItems("run-1")
	if len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
}

func TestRecordRunRollsBackOnItemFailure(t *testing.T) {
	db := openTestDB(t)
	items := []ReportItem{
		{Section: "gear", Position: 1, Title: "A", URL: "https://a.com"},
		{Section: "gear", Position: 1, Title: "B", URL: "https://b.com"},
	}
	if err := db.RecordRun(testReport("run-1", time.Now()), items); err == nil {
		t.Fatal("expected duplicate position to fail")
	}

	rec, err := db.GetReport("run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Error("expected no report row after failed item insert")
	}
	if got, _ := db.GetReportItems("run-1"); len(got) != 0 {
		t.Errorf("expected no items, got %d", len(got))
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertReport(testReport("r1", time.Now()))
	r2 := testReport("r2", time.Now())
	r2.Region = "US"
	db.InsertReport(r2)
	db.InsertReportItems("r1", []ReportItem{
		{Section: "stars", Position: 1, Title: "A", URL: "https://a.com"},
		{Section: "gear", Position: 1, Title: "B", URL: "https://b.com"},
	})
	db.InsertReportItems("r2", []ReportItem{
		{Section: "stars", Position: 1, Title: "A", URL: "https://a.com"},
	})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Stats{Reports: 2, Items: 3, DistinctURLs: 2, Regions: 2}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}
}
