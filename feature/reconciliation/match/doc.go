// Package match holds the candidate-producing strategies.
//
// Exact runs first and pairs records that agree on period, account (through the
// CodeTable), normalized description and amount. Fuzzy runs on whatever Exact
// left behind and pairs records within date and amount tolerances whose
// descriptions are similar enough. Neither strategy decides conflicts; that is
// left to reconcile.Resolve.
package match
