// Package reconciliation matches order forecast lines against general-ledger entries.
//
// # Runs
//
// Service.Run reconciles one accounting period. Under a per-period lock and in
// one transaction it counts the records already resolved, selects the
// unresolved pool, and runs the strategies in tier order (exact, then fuzzy).
// Each tier's candidates go through reconcile.Resolve, so every order and GL
// entry ends up in at most one pair. Exact pairs become "matched", fuzzy pairs
// become "fuzzy". The run is recorded in the ledger and, when storage is
// enabled, archived to runs/<period>/<run id>.json.
//
// # Overrides
//
// ManualMatch, Unmatch and SetExclusion change records on behalf of a person.
// They always write both sides of a pair in one transaction, check record
// versions, and report an AuditEvent once committed.
//
// # HTTP Endpoints
//
//   - POST /reconciliation/runs : Run a period.
//   - GET /reconciliation/runs?period= : List runs.
//   - GET /reconciliation/runs/latest?period= : Latest run.
//   - GET /reconciliation/runs/stats?period= : Ledger totals.
//   - POST /reconciliation/match : Manual match.
//   - POST /reconciliation/unmatch : Clear a match.
//   - POST /reconciliation/exclusions : Exclude or include records.
//   - GET /reconciliation/orders, /reconciliation/gl : Browse records by period and status.
package reconciliation
