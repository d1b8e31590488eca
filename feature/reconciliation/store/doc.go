// Package store persists reconciliation records with gorm.
//
// Reads that feed a state change take row locks (SELECT ... FOR UPDATE on MySQL)
// and every write of reconciliation fields is guarded by the record's version
// column. A write that finds the version changed returns ErrVersionConflict.
// Use Transaction to group the writes of a run or an override.
package store
