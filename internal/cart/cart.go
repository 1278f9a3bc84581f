// Package cart persists the shopping cart in a local SQLite database, the
// terminal analogue of browser localStorage. One cart per database file.
package cart

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Item is one cart line. Price is in VND; carts merge by product id.
type Item struct {
	ProductID uint64
	Name      string
	Price     uint64
	Qty       int
	AddedAt   time.Time
}

// Store wraps a SQLite connection for the cart.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the cart database and runs migrations.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cart database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate cart: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func migrate(conn *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS cart_items (
		product_id INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		price      INTEGER NOT NULL,
		qty        INTEGER NOT NULL,
		added_at   DATETIME NOT NULL
	);
	`
	_, err := conn.Exec(ddl)
	return err
}

// Add puts an item into the cart. Adding a product already present merges
// quantities and refreshes the stored name and price.
func (s *Store) Add(item Item) error {
	if item.Qty <= 0 {
		return fmt.Errorf("add to cart: quantity must be positive, got %d", item.Qty)
	}
	const q = `INSERT INTO cart_items (product_id, name, price, qty, added_at)
	           VALUES (?, ?, ?, ?, ?)
	           ON CONFLICT(product_id) DO UPDATE SET
	               qty = qty + excluded.qty,
	               name = excluded.name,
	               price = excluded.price`
	_, err := s.conn.Exec(q, item.ProductID, item.Name, item.Price, item.Qty, time.Now())
	return err
}

// SetQty overwrites an item's quantity. Zero or negative removes the item.
func (s *Store) SetQty(productID uint64, qty int) error {
	if qty <= 0 {
		return s.Remove(productID)
	}
	_, err := s.conn.Exec(`UPDATE cart_items SET qty = ? WHERE product_id = ?`, qty, productID)
	return err
}

// Remove deletes an item by product id.
func (s *Store) Remove(productID uint64) error {
	_, err := s.conn.Exec(`DELETE FROM cart_items WHERE product_id = ?`, productID)
	return err
}

// Clear empties the cart.
func (s *Store) Clear() error {
	_, err := s.conn.Exec(`DELETE FROM cart_items`)
	return err
}

// Items returns the cart contents, oldest addition first.
func (s *Store) Items() ([]Item, error) {
	rows, err := s.conn.Query(`SELECT product_id, name, price, qty, added_at
	                           FROM cart_items ORDER BY added_at, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Qty, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Total returns the cart value in VND.
func (s *Store) Total() (uint64, error) {
	var total sql.NullInt64
	if err := s.conn.QueryRow(`SELECT SUM(price * qty) FROM cart_items`).Scan(&total); err != nil {
		return 0, err
	}
	return uint64(total.Int64), nil
}
