package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/onboard/internal/model"
)

// Lookup errors returned by the backend tables.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// User is a registered account of the development backend.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

// CheckoutRecord is a pending or completed hosted checkout.
type CheckoutRecord struct {
	ID         string
	UserID     int64
	PlanID     string
	SuccessURL string
	CancelURL  string
	Completed  bool
}

func nowText() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// CreateUser inserts a user and returns its id.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, nowText())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, ErrConflict
		}
		return 0, err
	}
	return res.LastInsertId()
}

// UserByEmail looks up a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// CreateToken stores an issued access token.
func (s *Store) CreateToken(ctx context.Context, token string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO access_tokens (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, nowText())
	return err
}

// UserIDForToken resolves an access token to its user.
func (s *Store) UserIDForToken(ctx context.Context, token string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM access_tokens WHERE token = ?`, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SaveProfileSection stores the JSON body of one profile section
// ("business" or "branding").
func (s *Store) SaveProfileSection(ctx context.Context, userID int64, section, body string) error {
	var column string
	switch section {
	case "business", "branding":
		column = section
	default:
		return fmt.Errorf("unknown profile section %q", section)
	}
	query := fmt.Sprintf(`INSERT INTO profiles (user_id, %[1]s, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = excluded.updated_at`, column)
	_, err := s.db.ExecContext(ctx, query, userID, body, nowText())
	return err
}

// Profile returns the raw JSON sections for a user.
func (s *Store) Profile(ctx context.Context, userID int64) (business, branding string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT business, branding FROM profiles WHERE user_id = ?`, userID).Scan(&business, &branding)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	return business, branding, nil
}

// SeedPlans inserts plans that do not exist yet.
func (s *Store) SeedPlans(ctx context.Context, plans []model.Plan) error {
	for _, p := range plans {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO plans (id, name, interval, price_cents, active) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Interval, p.PriceCents, boolInt(p.Active)); err != nil {
			return err
		}
	}
	return nil
}

// ListPlans returns all plans ordered by price.
func (s *Store) ListPlans(ctx context.Context) ([]model.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, interval, price_cents, active FROM plans ORDER BY price_cents ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var plans []model.Plan
	for rows.Next() {
		var p model.Plan
		var active int
		if err := rows.Scan(&p.ID, &p.Name, &p.Interval, &p.PriceCents, &active); err != nil {
			return nil, err
		}
		p.Active = active != 0
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// CreateCheckout stores a pending checkout session.
func (s *Store) CreateCheckout(ctx context.Context, rec CheckoutRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkout_sessions (id, user_id, plan_id, success_url, cancel_url, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		rec.ID, rec.UserID, rec.PlanID, rec.SuccessURL, rec.CancelURL, nowText())
	return err
}

// Checkout looks up a checkout session.
func (s *Store) Checkout(ctx context.Context, id string) (CheckoutRecord, error) {
	var rec CheckoutRecord
	var completed int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, plan_id, success_url, cancel_url, completed FROM checkout_sessions WHERE id = ?`, id).
		Scan(&rec.ID, &rec.UserID, &rec.PlanID, &rec.SuccessURL, &rec.CancelURL, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return CheckoutRecord{}, ErrNotFound
	}
	if err != nil {
		return CheckoutRecord{}, err
	}
	rec.Completed = completed != 0
	return rec, nil
}

// CompleteCheckout marks a checkout paid and activates the user's subscription.
func (s *Store) CompleteCheckout(ctx context.Context, id string) (rec CheckoutRecord, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CheckoutRecord{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var completed int
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, plan_id, success_url, cancel_url, completed FROM checkout_sessions WHERE id = ?`, id).
		Scan(&rec.ID, &rec.UserID, &rec.PlanID, &rec.SuccessURL, &rec.CancelURL, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return CheckoutRecord{}, err
	}
	if err != nil {
		return CheckoutRecord{}, err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE checkout_sessions SET completed = 1 WHERE id = ?`, id); err != nil {
		return CheckoutRecord{}, err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, active, started_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(user_id) DO UPDATE SET plan_id = excluded.plan_id, active = 1, started_at = excluded.started_at`,
		rec.UserID, rec.PlanID, nowText()); err != nil {
		return CheckoutRecord{}, err
	}
	if err = tx.Commit(); err != nil {
		return CheckoutRecord{}, err
	}
	rec.Completed = true
	return rec, nil
}

// Subscription returns the subscription state for a user.
func (s *Store) Subscription(ctx context.Context, userID int64) (model.Subscription, error) {
	var sub model.Subscription
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT plan_id, active FROM subscriptions WHERE user_id = ?`, userID).Scan(&sub.PlanID, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, nil
	}
	if err != nil {
		return model.Subscription{}, err
	}
	sub.Active = active != 0
	return sub, nil
}

// InsertTrackEvent records one funnel tracking call.
func (s *Store) InsertTrackEvent(ctx context.Context, userID int64, ev model.TrackEvent, atMs int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO track_events (user_id, session_id, step_number, completed, created_at_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, ev.SessionID, ev.StepNumber, boolInt(ev.Completed), atMs)
	return err
}

// StepCounts aggregates distinct sessions per step. Any event counts as a
// visit; only completed events count toward Completed.
func (s *Store) StepCounts(ctx context.Context, filter model.FunnelFilter) ([]model.StepCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step_number,
			COUNT(DISTINCT session_id) AS visited,
			COUNT(DISTINCT CASE WHEN completed = 1 THEN session_id END) AS completed
		FROM track_events
		WHERE created_at_ms >= ?
		GROUP BY step_number
		ORDER BY step_number ASC`, filter.SinceMs)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var counts []model.StepCount
	for rows.Next() {
		var c model.StepCount
		if err := rows.Scan(&c.Step, &c.Visited, &c.Completed); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
