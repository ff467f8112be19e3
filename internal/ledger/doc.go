// Package ledger defines the domain records of the shoplog event log.
//
// The log is append-only: orders, refunds, and manual ledger entries are
// written once and never updated or deleted. Everything the system reports
// about the present - stock on hand, a customer's membership tier, the
// activity budget - is recomputed from these records at query time rather
// than stored. The only fields ever mutated in place are a customer's
// points and debt balances and a product's initial stock baseline.
package ledger
