package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// Interaction journal: a sqlite log of everything said across sessions.
// Purely observational — the mind's own memory lives in the state blob, the
// journal is for the human reading back through it.

func initJournal(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts REAL NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func journalAdd(db *sql.DB, role, text string) {
	if db == nil {
		return
	}
	db.Exec("INSERT INTO messages(ts, role, text) VALUES(?,?,?)",
		float64(time.Now().UnixMilli())/1000.0, role, text)
}

type journalEntry struct {
	Role string
	Text string
}

func journalRecent(db *sql.DB, limit int) []journalEntry {
	if db == nil {
		return nil
	}
	rows, err := db.Query("SELECT role, text FROM messages ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var msgs []journalEntry
	for rows.Next() {
		var e journalEntry
		rows.Scan(&e.Role, &e.Text)
		msgs = append(msgs, e)
	}
	// Reverse to chronological order
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
