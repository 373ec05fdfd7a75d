package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store keeps a local audit trail of voice sessions and the products they
// created. The external database remains the owner of product records; this
// is operator bookkeeping only.
type Store struct {
	DB *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			room TEXT,
			identity TEXT,
			status TEXT,
			created_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			product_id TEXT,
			name TEXT,
			seller_id TEXT,
			created_at INTEGER
		);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// CreateSession records a new voice session for a room and returns its id.
func (s *Store) CreateSession(room, identity string) (string, error) {
	id := uuid.NewString()
	now := time.Now().Unix()
	if _, err := s.DB.Exec(
		`INSERT INTO sessions(id, room, identity, status, created_at) VALUES(?,?,?,?,?)`,
		id, room, identity, "active", now,
	); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateSessionStatus moves a session to a new lifecycle status.
func (s *Store) UpdateSessionStatus(sessionID, status string) error {
	res, err := s.DB.Exec(`UPDATE sessions SET status = ? WHERE id = ?`, status, sessionID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

// RecordProduct logs a successful product creation for a session.
func (s *Store) RecordProduct(sessionID, productID, name, sellerID string) error {
	now := time.Now().Unix()
	_, err := s.DB.Exec(
		`INSERT INTO products(id, session_id, product_id, name, seller_id, created_at) VALUES(?,?,?,?,?,?)`,
		uuid.NewString(), sessionID, productID, name, sellerID, now,
	)
	return err
}

// ProductRecord is one audited creation.
type ProductRecord struct {
	ProductID string
	Name      string
	SellerID  string
	CreatedAt int64
}

// SessionProducts returns the products created during a session, oldest first.
func (s *Store) SessionProducts(sessionID string) ([]ProductRecord, error) {
	rows, err := s.DB.Query(
		`SELECT product_id, name, seller_id, created_at FROM products WHERE session_id = ? ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductRecord
	for rows.Next() {
		var r ProductRecord
		if err := rows.Scan(&r.ProductID, &r.Name, &r.SellerID, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
