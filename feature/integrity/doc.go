// Package integrity verifies stored reconciliation state.
//
// Unlike the 'reconciliation' package, which changes match state, this package
// only reads and reports.
//
// # Checks Provided
//
//   - Period: Status and match-edge consistency of one period's records (see checks.CheckRecords).
//   - Schema: Every column of the reconciliation models exists in the connected database.
//   - Archive: Every run in the ledger has its runs/<period>/<id>.json object in storage.
//
// # HTTP Endpoints
//
//   - GET /integrity/period/:period : Runs the period check.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/archive/:period : Runs the archive check.
package integrity
