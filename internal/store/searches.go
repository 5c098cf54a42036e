package store

import "time"

// recentSearchKeep bounds how many searches are retained per profile.
const recentSearchKeep = 50

// RecordSearch appends a search to the history and trims old entries.
func (db *DB) RecordSearch(query, source string) error {
	now := time.Now().UnixMilli()
	if _, err := db.Exec(`
		INSERT INTO recent_searches (query, source, searched_at) VALUES (?, ?, ?)`,
		query, source, now); err != nil {
		return err
	}
	_, err := db.Exec(`
		DELETE FROM recent_searches WHERE id NOT IN (
			SELECT id FROM recent_searches ORDER BY searched_at DESC, id DESC LIMIT ?
		)`, recentSearchKeep)
	return err
}

// RecentSearches returns up to limit past searches, newest first.
func (db *DB) RecentSearches(limit int) ([]RecentSearch, error) {
	rows, err := db.Query(`
		SELECT id, query, source, searched_at
		FROM recent_searches ORDER BY searched_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var searches []RecentSearch
	for rows.Next() {
		var s RecentSearch
		if err := rows.Scan(&s.ID, &s.Query, &s.Source, &s.SearchedAt); err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}
