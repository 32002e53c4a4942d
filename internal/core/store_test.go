package core

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/csvrecords/internal/csvparse"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testStore connects to TEST_DATABASE_URL or skips the test.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL store test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	records, err := csvparse.Parse("name,age,note\nAlex,32,\"a, b\"\nVova,25,x", csvparse.WithCoercion(csvparse.CoercionTyped))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	run := RunInfo{
		ID:          uuid.NewString(),
		Name:        "people.csv",
		Coercion:    csvparse.CoercionTyped,
		Encoding:    "utf-8",
		Headers:     []string{"name", "age", "note"},
		RecordCount: len(records),
		InputBytes:  42,
		IPAddress:   "192.0.2.1",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := store.SaveRun(ctx, run, records); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	t.Cleanup(func() { store.DeleteRun(context.Background(), run.ID) })

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Name != run.Name || got.RecordCount != 2 || got.IPAddress != run.IPAddress || got.UserAgent != "" {
		t.Errorf("GetRun() = %+v", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}

	page, err := store.ListRecords(ctx, run.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListRecords() error = %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("ListRecords() returned %d records, want 2", len(page))
	}
	if got := strings.Join(page[0].Keys(), ","); got != "name,age,note" {
		t.Errorf("Keys() = %q, want header order", got)
	}
	if v, _ := page[0].Get("age"); !v.IsNumber() {
		t.Errorf("age = %#v, want number", v)
	}

	runs, err := store.ListRuns(ctx, 1000)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	found := false
	for _, r := range runs {
		found = found || r.ID == run.ID
	}
	if !found {
		t.Error("ListRuns() did not include the saved run")
	}

	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}
	if _, err := store.GetRun(ctx, run.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() after delete error = %v, want ErrRunNotFound", err)
	}
	if err := store.DeleteRun(ctx, run.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("second DeleteRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestStore_InvalidID(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetRun(context.Background(), "not-a-uuid"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}
