package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateLedgerTables creates the initial schema: promo codes with their
// affiliate rosters, the purchase ledger, the catalog of sold items, leads,
// the leaderboard, and affiliate login credentials.
func CreateLedgerTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_ledger_tables",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS promo_codes (
					id UUID PRIMARY KEY,
					code VARCHAR(50) NOT NULL UNIQUE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE TABLE IF NOT EXISTS promo_affiliates (
					id UUID PRIMARY KEY,
					promo_code_id UUID NOT NULL REFERENCES promo_codes(id) ON DELETE CASCADE,
					affiliate_username VARCHAR(100) NOT NULL,
					email VARCHAR(255) NOT NULL,
					discount_percentage DECIMAL(5,2) NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT idx_promo_affiliates_email UNIQUE (promo_code_id, email),
					CONSTRAINT idx_promo_affiliates_username UNIQUE (promo_code_id, affiliate_username)
				);

				CREATE TABLE IF NOT EXISTS purchases (
					id UUID PRIMARY KEY,
					promo_code VARCHAR(50) NOT NULL,
					customer_username VARCHAR(100) NOT NULL,
					affiliate_username VARCHAR(100) NOT NULL,
					customer_phone VARCHAR(20) NOT NULL,
					items_bought INTEGER NOT NULL,
					total_bill DECIMAL(12,2) NOT NULL,
					notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT idx_purchases_redemption UNIQUE (promo_code, customer_username, affiliate_username)
				);
				CREATE INDEX IF NOT EXISTS idx_purchases_promo_code ON purchases(promo_code);
				CREATE INDEX IF NOT EXISTS idx_purchases_affiliate ON purchases(affiliate_username);

				CREATE TABLE IF NOT EXISTS catalog_items (
					id UUID PRIMARY KEY,
					item_id VARCHAR(100) NOT NULL UNIQUE,
					item_name VARCHAR(255) NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE TABLE IF NOT EXISTS leads (
					id UUID PRIMARY KEY,
					promo_code VARCHAR(50) NOT NULL,
					customer_username VARCHAR(100) NOT NULL,
					full_name VARCHAR(255) NOT NULL,
					phone VARCHAR(20) NOT NULL,
					email VARCHAR(255) NOT NULL,
					is_converted BOOLEAN NOT NULL DEFAULT FALSE,
					converted_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE,
					CONSTRAINT idx_leads_promo_customer UNIQUE (promo_code, customer_username)
				);

				CREATE TABLE IF NOT EXISTS leaderboard_entries (
					id UUID PRIMARY KEY,
					affiliate_username VARCHAR(100) NOT NULL UNIQUE,
					followers_count BIGINT NOT NULL DEFAULT 0 CHECK (followers_count >= 0),
					order_points DECIMAL(12,2) NOT NULL DEFAULT 0,
					premium_points DECIMAL(12,2) NOT NULL DEFAULT 0,
					consistency_points DECIMAL(12,2) NOT NULL DEFAULT 0,
					total_points DECIMAL(12,2) NOT NULL DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE TABLE IF NOT EXISTS affiliate_users (
					id UUID PRIMARY KEY,
					username VARCHAR(100) NOT NULL UNIQUE,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS affiliate_users;
				DROP TABLE IF EXISTS leaderboard_entries;
				DROP TABLE IF EXISTS leads;
				DROP TABLE IF EXISTS catalog_items;
				DROP TABLE IF EXISTS purchases;
				DROP TABLE IF EXISTS promo_affiliates;
				DROP TABLE IF EXISTS promo_codes;
			`).Error
		},
	}
}
