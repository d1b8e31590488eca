// Package models defines the persisted reconciliation records and their state machine.
//
// An order forecast line moves between unmatched, matched, fuzzy and excluded.
// A GL entry is either unmatched or matched, with an independent exclusion flag
// that may only be set while it is unmatched. The order's GLMatchID is the only
// edge between the two sides; the GL status mirrors it and is always written in
// the same transaction.
package models
