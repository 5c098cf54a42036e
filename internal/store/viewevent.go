package store

import "time"

// QueueView records a view-count increment for later delivery.
func (db *DB) QueueView(eventID, listingID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO view_events (event_id, listing_id, status, created_at, updated_at)
		VALUES (?, ?, 'queued', ?, ?)`,
		eventID, listingID, now, now)
	return err
}

// MarkViewSending updates a view event to 'sending' and bumps its attempt
// count.
func (db *DB) MarkViewSending(eventID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE view_events SET status = 'sending', attempts = attempts + 1, updated_at = ?
		WHERE event_id = ?`, now, eventID)
	return err
}

// MarkViewSent updates a view event to 'sent'.
func (db *DB) MarkViewSent(eventID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE view_events SET status = 'sent', updated_at = ? WHERE event_id = ?`, now, eventID)
	return err
}

// MarkViewFailed updates a view event to 'failed' with an error message.
func (db *DB) MarkViewFailed(eventID, errMsg string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`UPDATE view_events SET status = 'failed', error_message = ?, updated_at = ? WHERE event_id = ?`, errMsg, now, eventID)
	return err
}

// RequeueView puts a failed event back in the queue for another attempt.
func (db *DB) RequeueView(eventID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE view_events SET status = 'queued', error_message = NULL, updated_at = ?
		WHERE event_id = ? AND status = 'failed'`, now, eventID)
	return err
}

// PendingViews returns view events that are still queued, oldest first.
func (db *DB) PendingViews() ([]ViewEvent, error) {
	rows, err := db.Query(`
		SELECT id, event_id, listing_id, status, attempts, COALESCE(error_message, '')
		FROM view_events WHERE status = 'queued' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []ViewEvent
	for rows.Next() {
		var e ViewEvent
		if err := rows.Scan(&e.ID, &e.EventID, &e.ListingID, &e.Status, &e.Attempts, &e.ErrorMessage); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// PruneSentViews deletes delivered events older than the given age.
func (db *DB) PruneSentViews(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	res, err := db.Exec(`DELETE FROM view_events WHERE status = 'sent' AND updated_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
