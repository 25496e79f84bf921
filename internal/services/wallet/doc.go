// Package wallet composes the ledger store, the card registry, and the
// concurrency guard into all-or-nothing wallet operations: card
// redemption, spending, refunds, and history queries. Operations on one
// account are serialized by a per-account lock, so each account's
// transaction history is totally ordered and balance transitions are
// linearizable.
package wallet
