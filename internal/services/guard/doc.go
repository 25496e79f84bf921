// Package guard serializes concurrent wallet mutations per account and
// throttles redemption attempts per actor. The per-account lock gives
// each account a totally ordered mutation history; the Redis-backed
// limiter defends the card-code space against guessing attacks.
package guard
