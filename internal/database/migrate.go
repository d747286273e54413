package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL for the application. Statements are idempotent so the
// bootstrap can run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	billing_address TEXT NOT NULL DEFAULT '',
	shipping_address TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory (
	id UUID PRIMARY KEY,
	product_id TEXT UNIQUE REFERENCES products(id),
	quantity INTEGER NOT NULL CHECK (quantity >= 0),
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS carts (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_items (
	id UUID PRIMARY KEY,
	cart_id UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
	product_id TEXT NOT NULL REFERENCES products(id),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	price DOUBLE PRECISION NOT NULL,
	added_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	status TEXT NOT NULL,
	total_amount DOUBLE PRECISION NOT NULL,
	payment_method TEXT NOT NULL,
	billing_address TEXT NOT NULL,
	shipping_address TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS order_items (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id TEXT REFERENCES products(id),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	price DOUBLE PRECISION NOT NULL,
	product_name TEXT NOT NULL DEFAULT '',
	product_price DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS invoices (
	id UUID PRIMARY KEY,
	invoice_number TEXT NOT NULL UNIQUE,
	order_id UUID NOT NULL UNIQUE REFERENCES orders(id),
	user_id UUID NOT NULL REFERENCES users(id),
	total_amount DOUBLE PRECISION NOT NULL,
	tax_amount DOUBLE PRECISION NOT NULL,
	shipping_fee DOUBLE PRECISION NOT NULL,
	payment_method TEXT NOT NULL,
	billing_address TEXT NOT NULL,
	shipping_address TEXT NOT NULL,
	status TEXT NOT NULL,
	file_path TEXT,
	generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cart_items_cart_id ON cart_items(cart_id);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
`

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
