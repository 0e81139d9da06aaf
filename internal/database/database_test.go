package database

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
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

func ptr(s string) *string { return &s }

var base = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func testRun(id string, offset time.Duration, status string) Run {
	started := base.Add(offset)
	return Run{
		ID:         id,
		ProfileURL: "https://scholar.google.com/citations?hl=en&user=abc",
		StartedAt:  FormatTime(started),
		FinishedAt: FormatTime(started.Add(2 * time.Second)),
		Status:     status,
		HTTPStatus: 200,
	}
}

func TestInsertAndGetRun(t *testing.T) {
	db := openTestDB(t)

	r := testRun("run-1", 0, StatusOK)
	r.PublicationCount = 12
	r.OutputPath = ptr("public/scholar.json")
	r.ResultJSON = ptr(`{"author":{}}`)
	require.NoError(t, db.InsertRun(r))

	got, err := db.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, r, *got)
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.GetRun("nope")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestInsertRunRejectsBadStatus(t *testing.T) {
	db := openTestDB(t)
	require.Error(t, db.InsertRun(testRun("bad", 0, "maybe")))
}

func TestGetRecentRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.InsertRun(testRun(fmt.Sprintf("run-%d", i), time.Duration(i)*time.Hour, StatusOK)))
	}

	runs, err := db.GetRecentRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "run-4", runs[0].ID)
	require.Equal(t, "run-2", runs[2].ID)
}

func TestGetLatestSuccessfulRun(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.GetLatestSuccessfulRun()
	require.NoError(t, err)
	require.Nil(t, latest)

	require.NoError(t, db.InsertRun(testRun("ok-old", 0, StatusOK)))
	failed := testRun("failed-new", time.Hour, StatusFailed)
	failed.Error = ptr("profile blocked or page structure changed")
	require.NoError(t, db.InsertRun(failed))

	latest, err = db.GetLatestSuccessfulRun()
	require.NoError(t, err)
	require.Equal(t, "ok-old", latest.ID)
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InsertRun(testRun("a", 0, StatusOK)))
	require.NoError(t, db.InsertRun(testRun("b", time.Hour, StatusOK)))
	require.NoError(t, db.InsertRun(testRun("c", 2*time.Hour, StatusFailed)))

	stats, err := db.GetStats()
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalRuns)
	require.Equal(t, 2, stats.SuccessfulRuns)
	require.Equal(t, 1, stats.FailedRuns)
	require.Equal(t, FormatTime(base.Add(time.Hour)), stats.LastSuccessAt)
}

func TestGetStatsEmpty(t *testing.T) {
	db := openTestDB(t)
	stats, err := db.GetStats()
	require.NoError(t, err)
	require.Equal(t, 0, stats.TotalRuns)
	require.Equal(t, "", stats.LastSuccessAt)
}

func TestFormatDisplay(t *testing.T) {
	require.Equal(t, "Mar 05, 2024 10:00 UTC", FormatDisplay(FormatTime(base)))
	require.Equal(t, "garbage", FormatDisplay("garbage"))
}
