package database

import (
	"context"
	"database/sql"
	"time"
)

// Migrate creates the schema on startup when it does not exist yet.  Every
// statement is idempotent, so running it against an already-migrated
// database is a no-op.
//
// Tenant isolation lives entirely in the restaurant_id columns: categories
// and meals always carry their owning restaurant and every scoped query in
// the repository layer filters on it.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS restaurants (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			subdomain VARCHAR(63) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			subscription_status VARCHAR(16) NOT NULL DEFAULT 'trial',
			subscription_plan VARCHAR(32) NOT NULL DEFAULT 'basic',
			trial_ends_at DATETIME NOT NULL,
			currency VARCHAR(8) NOT NULL DEFAULT 'USD',
			language VARCHAR(8) NOT NULL DEFAULT 'en',
			logo_url VARCHAR(512) NOT NULL DEFAULT '',
			banner_url VARCHAR(512) NOT NULL DEFAULT '',
			instagram_url VARCHAR(512) NOT NULL DEFAULT '',
			facebook_url VARCHAR(512) NOT NULL DEFAULT '',
			whatsapp_number VARCHAR(32) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_restaurants_subdomain (subdomain),
			UNIQUE KEY uq_restaurants_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			role VARCHAR(16) NOT NULL DEFAULT 'CUSTOMER',
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			restaurant_id BIGINT UNSIGNED NOT NULL,
			name_en VARCHAR(255) NOT NULL,
			name_ar VARCHAR(255) NOT NULL,
			description_en TEXT,
			description_ar TEXT,
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_categories_name_en (restaurant_id, name_en),
			UNIQUE KEY uq_categories_name_ar (restaurant_id, name_ar),
			KEY idx_categories_restaurant (restaurant_id),
			CONSTRAINT fk_categories_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS meals (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			restaurant_id BIGINT UNSIGNED NOT NULL,
			category_id BIGINT UNSIGNED NOT NULL,
			name_en VARCHAR(255) NOT NULL,
			name_ar VARCHAR(255) NOT NULL,
			description_en TEXT,
			description_ar TEXT,
			price DECIMAL(10,2) NOT NULL,
			image_url VARCHAR(512) NOT NULL DEFAULT '',
			discount_percentage DECIMAL(5,2) NOT NULL DEFAULT 0,
			discount_starts_at DATETIME NULL,
			discount_ends_at DATETIME NULL,
			rating DECIMAL(3,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_meals_restaurant (restaurant_id),
			KEY idx_meals_category (category_id),
			KEY idx_meals_discount_end (discount_ends_at),
			CONSTRAINT fk_meals_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id),
			CONSTRAINT fk_meals_category FOREIGN KEY (category_id) REFERENCES categories (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS meal_reviews (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			meal_id BIGINT UNSIGNED NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			user_name VARCHAR(255) NOT NULL DEFAULT '',
			rating TINYINT UNSIGNED NOT NULL,
			comment TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			KEY idx_reviews_meal (meal_id),
			KEY idx_reviews_user (user_id),
			CONSTRAINT fk_reviews_meal FOREIGN KEY (meal_id) REFERENCES meals (id),
			CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
