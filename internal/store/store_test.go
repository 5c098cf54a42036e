package store

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate; a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	db := testDB(t)

	if err := db.AddFavorite("l1", "Calc textbook", 40, "Textbooks"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddFavorite("l2", "Desk lamp", 12.5, "Dorm Essentials"); err != nil {
		t.Fatal(err)
	}

	fav, err := db.IsFavorite("l1")
	if err != nil || !fav {
		t.Fatalf("IsFavorite(l1) = %v, %v", fav, err)
	}

	favs, err := db.Favorites()
	if err != nil {
		t.Fatal(err)
	}
	if len(favs) != 2 {
		t.Fatalf("got %d favorites, want 2", len(favs))
	}

	// Re-adding refreshes the denormalized price.
	if err := db.AddFavorite("l1", "Calc textbook", 35, "Textbooks"); err != nil {
		t.Fatal(err)
	}
	favs, _ = db.Favorites()
	for _, f := range favs {
		if f.ListingID == "l1" && f.Price != 35 {
			t.Errorf("price not refreshed: %v", f.Price)
		}
	}

	if err := db.RemoveFavorite("l1"); err != nil {
		t.Fatal(err)
	}
	if err := db.RemoveFavorite("never-existed"); err != nil {
		t.Errorf("removing unknown favorite: %v", err)
	}
	fav, _ = db.IsFavorite("l1")
	if fav {
		t.Error("l1 still a favorite after removal")
	}
}

func TestRecentSearchesNewestFirstAndTrimmed(t *testing.T) {
	db := testDB(t)

	for i := 0; i < recentSearchKeep+10; i++ {
		src := SearchSourceText
		if i%2 == 0 {
			src = SearchSourceVoice
		}
		if err := db.RecordSearch("query", src); err != nil {
			t.Fatal(err)
		}
	}

	all, err := db.RecentSearches(recentSearchKeep * 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != recentSearchKeep {
		t.Errorf("history not trimmed: %d entries", len(all))
	}

	few, _ := db.RecentSearches(5)
	if len(few) != 5 {
		t.Errorf("limit not applied: %d", len(few))
	}
	for i := 1; i < len(few); i++ {
		if few[i].ID > few[i-1].ID {
			t.Fatal("results not newest first")
		}
	}
}

func TestViewEventLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.QueueView("e1", "l1"); err != nil {
		t.Fatal(err)
	}
	if err := db.QueueView("e2", "l2"); err != nil {
		t.Fatal(err)
	}
	// Duplicate event IDs are rejected by the unique constraint.
	if err := db.QueueView("e1", "l1"); err == nil {
		t.Error("duplicate event_id accepted")
	}

	pending, err := db.PendingViews()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].EventID != "e1" {
		t.Fatalf("pending = %+v", pending)
	}

	if err := db.MarkViewSending("e1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkViewSent("e1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkViewSending("e2"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkViewFailed("e2", "service unavailable"); err != nil {
		t.Fatal(err)
	}

	pending, _ = db.PendingViews()
	if len(pending) != 0 {
		t.Errorf("pending after settle = %+v", pending)
	}

	// Failed events can be requeued for another attempt.
	if err := db.RequeueView("e2"); err != nil {
		t.Fatal(err)
	}
	pending, _ = db.PendingViews()
	if len(pending) != 1 || pending[0].EventID != "e2" || pending[0].Attempts != 1 {
		t.Fatalf("requeued = %+v", pending)
	}
}

func TestPruneSentViews(t *testing.T) {
	db := testDB(t)

	if err := db.QueueView("e1", "l1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkViewSent("e1"); err != nil {
		t.Fatal(err)
	}

	// Nothing older than an hour yet.
	n, err := db.PruneSentViews(time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("pruned %d, want 0", n)
	}

	// Everything sent is older than "0 ago".
	n, err = db.PruneSentViews(-time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
