// Package store provides durable SQLite storage for the shoplog event
// history and reference tables. Writes to orders, refunds, and
// ledger_entries are append-only; the engine derives stock, tiers, and
// budget from full-table snapshots rather than stored aggregates.
package store
