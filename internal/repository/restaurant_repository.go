// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Restaurant model and repository methods. A Restaurant
// is the tenant root: every category and meal belongs to exactly one
// restaurant and all scoped queries filter on restaurant_id.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Subscription status values stored in restaurants.subscription_status.
const (
	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Restaurant mirrors the 'restaurants' table. PasswordHash is never
// serialized; public lookups go through sanitized DTOs in the handlers.
type Restaurant struct {
	ID                 uint64    `json:"id"`
	Subdomain          string    `json:"subdomain"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Name               string    `json:"name"`
	IsActive           bool      `json:"is_active"`
	SubscriptionStatus string    `json:"subscription_status"`
	SubscriptionPlan   string    `json:"subscription_plan"`
	TrialEndsAt        time.Time `json:"trial_ends_at"`
	Currency           string    `json:"currency"`
	Language           string    `json:"language"`
	LogoURL            string    `json:"logo_url"`
	BannerURL          string    `json:"banner_url"`
	InstagramURL       string    `json:"instagram_url"`
	FacebookURL        string    `json:"facebook_url"`
	WhatsappNumber     string    `json:"whatsapp_number"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SubscriptionStatusAt derives the effective subscription status at the
// given instant. A trial whose trial_ends_at has passed counts as expired
// even before the transition has been persisted.
func (r *Restaurant) SubscriptionStatusAt(now time.Time) string {
	if r.SubscriptionStatus == SubscriptionTrial && now.After(r.TrialEndsAt) {
		return SubscriptionExpired
	}
	return r.SubscriptionStatus
}

// ErrRestaurantNotFound is returned when a restaurant cannot be found.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrSubdomainExists is returned on a duplicate subdomain at registration.
var ErrSubdomainExists = errors.New("subdomain already exists")

// ErrEmailExists is returned on a duplicate email at registration.
var ErrEmailExists = errors.New("email already exists")

const restaurantCols = `id, subdomain, email, password_hash, name, is_active,
	subscription_status, subscription_plan, trial_ends_at, currency, language,
	logo_url, banner_url, instagram_url, facebook_url, whatsapp_number,
	created_at, updated_at`

// RestaurantRepo encapsulates all database queries related to restaurants.
type RestaurantRepo struct {
	db *sql.DB
}

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

func scanRestaurant(row *sql.Row) (*Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.Subdomain, &r.Email, &r.PasswordHash, &r.Name,
		&r.IsActive, &r.SubscriptionStatus, &r.SubscriptionPlan, &r.TrialEndsAt,
		&r.Currency, &r.Language, &r.LogoURL, &r.BannerURL, &r.InstagramURL,
		&r.FacebookURL, &r.WhatsappNumber, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Create inserts a new restaurant with a fresh trial subscription. On
// success the ID field is populated and timestamp fields are loaded back
// from the database.
func (r *RestaurantRepo) Create(ctx context.Context, rest *Restaurant) error {
	const q = `INSERT INTO restaurants
		(subdomain, email, password_hash, name, subscription_status, subscription_plan,
		 trial_ends_at, currency, language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rest.Subdomain, rest.Email, rest.PasswordHash, rest.Name,
		rest.SubscriptionStatus, rest.SubscriptionPlan, rest.TrialEndsAt,
		rest.Currency, rest.Language)
	if err != nil {
		if isDuplicate(err, "uq_restaurants_subdomain") {
			return ErrSubdomainExists
		}
		if isDuplicate(err, "uq_restaurants_email") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rest.ID = uint64(id)

	got, err := r.GetByID(ctx, rest.ID)
	if err != nil {
		return err
	}
	*rest = *got
	return nil
}

// GetByID fetches a restaurant by its primary key.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*Restaurant, error) {
	q := "SELECT " + restaurantCols + " FROM restaurants WHERE id = ?"
	return scanRestaurant(r.db.QueryRowContext(ctx, q, id))
}

// GetBySubdomain fetches a restaurant by its subdomain label. The lookup is
// case-insensitive; labels are stored lowercase and the candidate is
// normalized before comparison.
func (r *RestaurantRepo) GetBySubdomain(ctx context.Context, sub string) (*Restaurant, error) {
	sub = strings.ToLower(strings.TrimSpace(sub))
	q := "SELECT " + restaurantCols + " FROM restaurants WHERE subdomain = ?"
	return scanRestaurant(r.db.QueryRowContext(ctx, q, sub))
}

// GetByEmail fetches a restaurant by normalized email, used at login.
func (r *RestaurantRepo) GetByEmail(ctx context.Context, email string) (*Restaurant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	q := "SELECT " + restaurantCols + " FROM restaurants WHERE email = ?"
	return scanRestaurant(r.db.QueryRowContext(ctx, q, email))
}

// ProfileUpdate carries the optional fields of a profile update. Nil
// pointers leave the stored value untouched.
type ProfileUpdate struct {
	Name           *string
	Currency       *string
	Language       *string
	LogoURL        *string
	BannerURL      *string
	InstagramURL   *string
	FacebookURL    *string
	WhatsappNumber *string
}

// UpdateProfile applies a partial update to the restaurant's display
// settings. Only fields with non-nil pointers are written. Returns the
// refreshed record.
func (r *RestaurantRepo) UpdateProfile(ctx context.Context, id uint64, u ProfileUpdate) (*Restaurant, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", u.Name)
	add("currency", u.Currency)
	add("language", u.Language)
	add("logo_url", u.LogoURL)
	add("banner_url", u.BannerURL)
	add("instagram_url", u.InstagramURL)
	add("facebook_url", u.FacebookURL)
	add("whatsapp_number", u.WhatsappNumber)
	if len(sets) > 0 {
		q := fmt.Sprintf("UPDATE restaurants SET %s WHERE id = ?", strings.Join(sets, ", "))
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateSubscriptionStatus persists a subscription status transition.
func (r *RestaurantRepo) UpdateSubscriptionStatus(ctx context.Context, id uint64, status string) error {
	const q = "UPDATE restaurants SET subscription_status = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, status, id)
	return err
}
