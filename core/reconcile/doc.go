// Package reconcile holds the matching engine shared by every reconciliation run:
// candidate ordering, the greedy 1:1 assignment resolver, text normalization and
// similarity, and a small TTL cache for lookup tables.
//
// # Architecture
//
// Matching strategies (see feature/reconciliation/match) produce Candidates, each
// tagged with a Tier. Resolve orders them (exact tier first, then fuzzy by
// descending score, ties broken by ascending order and GL ids) and walks the list
// once, accepting a candidate only when neither side has been claimed yet.
//
// The single pass trades global optimality for determinism and O(n log n) cost:
// the same candidate set always yields the same Plan regardless of input order.
//
// # Text
//
// NormalizeText folds full-width characters, case and whitespace. Similarity is the
// indel-normalized Levenshtein ratio, expressed as a percentage, so thresholds are
// configured on a 0–100 scale.
//
// # Usage Example
//
//	cands := append(exact.Candidates(orders, entries), fuzzy.Candidates(orders, entries)...)
//	plan := reconcile.Resolve(cands)
//	for _, a := range plan.Assignments {
//	    fmt.Println(a.OrderID, a.GLID, a.Tier)
//	}
package reconcile
