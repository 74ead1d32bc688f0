package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("not found")

// Car is one inventory entry.
type Car struct {
	ID          string  `json:"id"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	Price       float64 `json:"price"`
	Mileage     int     `json:"mileage"`
	Style       string  `json:"style,omitempty"`
	FuelType    string  `json:"fuel_type,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Title renders "Make Model (Year)".
func (c Car) Title() string {
	title := strings.TrimSpace(c.Make + " " + c.Model)
	if c.Year > 0 {
		title = fmt.Sprintf("%s (%d)", title, c.Year)
	}
	return title
}

// Filters narrows an inventory search. Zero values mean "not set".
type Filters struct {
	Make       string
	Model      string
	Style      string
	FuelType   string
	Query      string
	YearMin    int
	YearMax    int
	PriceMin   float64
	PriceMax   float64
	MileageMax int
}

// Order records a placed vehicle order.
type Order struct {
	ID           string
	SessionID    string
	UserEmail    string
	BuyerName    string
	BuyerAddress string
	BuyerPhone   string
	BuyerEmail   string
	Car          Car
	Summary      string
	Status       string
	CreatedAt    time.Time
}

// Summary is a persisted end-of-session conversation summary.
type Summary struct {
	SessionID    string
	UserEmail    string
	Text         string
	MessageCount int
	StartedAt    time.Time
	EndedAt      time.Time
}

// UserProfile is what the advisor knows about a returning buyer.
type UserProfile struct {
	Email         string
	Name          string
	RecentSummary string
	LastSessionID string
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cars (
	id TEXT PRIMARY KEY,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	year INTEGER NOT NULL,
	price REAL NOT NULL,
	mileage INTEGER NOT NULL DEFAULT 0,
	style TEXT NOT NULL DEFAULT '',
	fuel_type TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	user_email TEXT NOT NULL DEFAULT '',
	buyer_name TEXT NOT NULL DEFAULT '',
	buyer_address TEXT NOT NULL,
	buyer_phone TEXT NOT NULL DEFAULT '',
	buyer_email TEXT NOT NULL DEFAULT '',
	car_id TEXT NOT NULL DEFAULT '',
	make TEXT NOT NULL DEFAULT '',
	model TEXT NOT NULL DEFAULT '',
	year INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL DEFAULT 0,
	summary TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id);
CREATE TABLE IF NOT EXISTS summaries (
	session_id TEXT PRIMARY KEY,
	user_email TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	message_count INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL DEFAULT '',
	ended_at TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	email TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	recent_summary TEXT NOT NULL DEFAULT '',
	last_session_id TEXT NOT NULL DEFAULT ''
);
`

// Store wraps the sqlite inventory and order database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, applies the schema and seeds
// the demo inventory when the cars table is empty. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM cars").Scan(&count); err != nil {
		return fmt.Errorf("count cars: %w", err)
	}
	if count == 0 {
		if err := s.seed(); err != nil {
			return err
		}
		log.Info().Int("cars", len(seedCars)).Str("component", "catalog").Msg("seeded demo inventory")
	}
	return nil
}

func (s *Store) seed() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	for _, c := range seedCars {
		_, err := tx.Exec(
			"INSERT INTO cars(id, make, model, year, price, mileage, style, fuel_type, description) VALUES(?,?,?,?,?,?,?,?,?)",
			uuid.NewString(), c.Make, c.Model, c.Year, c.Price, c.Mileage, c.Style, c.FuelType, c.Description,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("seed insert: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindCars queries the inventory. Newest first, cheapest first within a year.
func (s *Store) FindCars(ctx context.Context, f Filters, limit int) ([]Car, error) {
	if limit <= 0 {
		limit = 10
	}

	where := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)

	like := func(col, val string) {
		where = append(where, col+" LIKE '%' || ? || '%' COLLATE NOCASE")
		args = append(args, val)
	}

	if f.Make != "" {
		like("make", f.Make)
	}
	if f.Model != "" {
		like("model", f.Model)
	}
	if f.Style != "" {
		like("style", f.Style)
	}
	if f.FuelType != "" {
		like("fuel_type", f.FuelType)
	}
	if f.YearMin > 0 {
		where = append(where, "year >= ?")
		args = append(args, f.YearMin)
	}
	if f.YearMax > 0 {
		where = append(where, "year <= ?")
		args = append(args, f.YearMax)
	}
	if f.PriceMin > 0 {
		where = append(where, "price >= ?")
		args = append(args, f.PriceMin)
	}
	if f.PriceMax > 0 {
		where = append(where, "price <= ?")
		args = append(args, f.PriceMax)
	}
	if f.MileageMax > 0 {
		where = append(where, "mileage <= ?")
		args = append(args, f.MileageMax)
	}
	if f.Query != "" {
		where = append(where, "(make LIKE '%' || ? || '%' COLLATE NOCASE OR model LIKE '%' || ? || '%' COLLATE NOCASE OR description LIKE '%' || ? || '%' COLLATE NOCASE)")
		args = append(args, f.Query, f.Query, f.Query)
	}

	query := "SELECT id, make, model, year, price, mileage, style, fuel_type, description FROM cars"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, price ASC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find cars: %w", err)
	}
	defer rows.Close()

	var cars []Car
	for rows.Next() {
		var c Car
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Price, &c.Mileage, &c.Style, &c.FuelType, &c.Description); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// CreateOrder inserts a pending order and returns its ID.
func (s *Store) CreateOrder(ctx context.Context, o Order) (string, error) {
	if o.BuyerAddress == "" {
		return "", errors.New("buyer address is required")
	}
	if o.Car.Make == "" && o.Car.Model == "" {
		return "", errors.New("no vehicle selected")
	}

	id := o.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := o.Status
	if status == "" {
		status = "pending"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders(id, session_id, user_email, buyer_name, buyer_address, buyer_phone, buyer_email,
			car_id, make, model, year, price, summary, status, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, o.SessionID, o.UserEmail, o.BuyerName, o.BuyerAddress, o.BuyerPhone, o.BuyerEmail,
		o.Car.ID, o.Car.Make, o.Car.Model, o.Car.Year, o.Car.Price, o.Summary, status,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	log.Info().Str("component", "catalog").Str("order_id", id).
		Str("vehicle", o.Car.Title()).Str("buyer", o.BuyerName).Msg("order created")
	return id, nil
}

// OrderBySession returns the most recent order placed in a session.
func (s *Store) OrderBySession(ctx context.Context, sessionID string) (Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_email, buyer_name, buyer_address, buyer_phone, buyer_email,
			car_id, make, model, year, price, summary, status, created_at
		 FROM orders WHERE session_id = ? ORDER BY created_at DESC LIMIT 1`, sessionID)

	var o Order
	var createdAt string
	err := row.Scan(&o.ID, &o.SessionID, &o.UserEmail, &o.BuyerName, &o.BuyerAddress, &o.BuyerPhone, &o.BuyerEmail,
		&o.Car.ID, &o.Car.Make, &o.Car.Model, &o.Car.Year, &o.Car.Price, &o.Summary, &o.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return o, nil
}

// SaveSummary upserts a session summary and the user's recent_summary.
func (s *Store) SaveSummary(ctx context.Context, sum Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries(session_id, user_email, summary, message_count, started_at, ended_at, created_at)
		 VALUES(?,?,?,?,?,?,?)
		 ON CONFLICT(session_id) DO UPDATE SET
			summary = excluded.summary,
			message_count = excluded.message_count,
			ended_at = excluded.ended_at`,
		sum.SessionID, sum.UserEmail, sum.Text, sum.MessageCount,
		sum.StartedAt.Format(time.RFC3339), sum.EndedAt.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	if sum.UserEmail != "" {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO users(email, recent_summary, last_session_id) VALUES(?,?,?)
			 ON CONFLICT(email) DO UPDATE SET
				recent_summary = excluded.recent_summary,
				last_session_id = excluded.last_session_id`,
			sum.UserEmail, sum.Text, sum.SessionID,
		)
		if err != nil {
			return fmt.Errorf("update user summary: %w", err)
		}
	}
	return nil
}

// UserProfile fetches what is known about a buyer by email.
func (s *Store) UserProfile(ctx context.Context, email string) (UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT email, name, recent_summary, last_session_id FROM users WHERE email = ?", email)

	var p UserProfile
	err := row.Scan(&p.Email, &p.Name, &p.RecentSummary, &p.LastSessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return UserProfile{}, ErrNotFound
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("scan user: %w", err)
	}
	return p, nil
}
