// Package protocol owns the host/agent inspection wire contract.
//
// Ownership boundary:
// - versioned request envelope and per-version query enums
// - per-query response outcome enums and trailer placement rules
// - size budgets receivers use to reserve fixed buffers
//
// Encode and decode operate on caller-supplied buffers and never allocate.
// Discriminants are single bytes assigned densely in declaration order; that
// assignment is the compatibility contract, so variants are append-only and a
// retired variant becomes an explicit placeholder instead of being removed.
package protocol
