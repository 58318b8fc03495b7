// Package db provides the embedded database schema and seed data.
package db

import _ "embed"

// Schema contains the idempotent DDL for products, orders and order line items.
//
//go:embed migrations/001_schema.sql
var Schema string
