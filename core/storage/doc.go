// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface. The reconciliation
// service uses it to archive every run as a JSON document and to remove archives
// when old runs are pruned. Both AWS S3 and self-hosted MinIO are supported.
//
// The Client interface makes storage interactions easy to mock (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
