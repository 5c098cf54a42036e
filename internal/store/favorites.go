package store

import "time"

// AddFavorite stars a listing. Re-adding an existing favorite refreshes
// its denormalized fields.
func (db *DB) AddFavorite(listingID, title string, price float64, category string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO favorites (listing_id, title, price, category, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (listing_id) DO UPDATE SET title = excluded.title, price = excluded.price, category = excluded.category`,
		listingID, title, price, category, now)
	return err
}

// RemoveFavorite unstars a listing. Removing an unknown ID is not an error.
func (db *DB) RemoveFavorite(listingID string) error {
	_, err := db.Exec(`DELETE FROM favorites WHERE listing_id = ?`, listingID)
	return err
}

// IsFavorite reports whether a listing is starred.
func (db *DB) IsFavorite(listingID string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM favorites WHERE listing_id = ?`, listingID).Scan(&n)
	return n > 0, err
}

// Favorites returns all starred listings, most recently added first.
func (db *DB) Favorites() ([]Favorite, error) {
	rows, err := db.Query(`
		SELECT listing_id, title, price, category, added_at
		FROM favorites ORDER BY added_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var favs []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ListingID, &f.Title, &f.Price, &f.Category, &f.AddedAt); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}
