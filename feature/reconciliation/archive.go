package reconciliation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"forecast-recon/core/storage"
	"forecast-recon/feature/reconciliation/models"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
)

// Archive copies committed runs to object storage as runs/<period>/<id>.json.
type Archive struct {
	client storage.Client
	bucket string
}

// NewArchive creates an archive writing to bucket.
func NewArchive(client storage.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// ObjectKey returns the object name of a run.
func ObjectKey(run *models.ReconciliationRun) string {
	return fmt.Sprintf("runs/%s/%s.json", run.Period, run.ID)
}

// Put uploads one run.
func (a *Archive) Put(ctx context.Context, run *models.ReconciliationRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}
	_, err = a.client.PutObject(ctx, a.bucket, ObjectKey(run), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload run %s: %w", run.ID, err)
	}
	return nil
}

// Get downloads one archived run.
func (a *Archive) Get(ctx context.Context, period, id string) (*models.ReconciliationRun, error) {
	key := ObjectKey(&models.ReconciliationRun{Period: period, ID: id})
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var run models.ReconciliationRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &run, nil
}

// Keys lists the archived object names of a period.
func (a *Archive) Keys(ctx context.Context, period string) ([]string, error) {
	var keys []string
	opts := minio.ListObjectsOptions{Prefix: "runs/" + period + "/", Recursive: true}
	for obj := range a.client.ListObjects(ctx, a.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archives of %s: %w", period, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Remove deletes the archives of runs.
func (a *Archive) Remove(ctx context.Context, runs []models.ReconciliationRun) error {
	objects := make(chan minio.ObjectInfo, len(runs))
	for i := range runs {
		objects <- minio.ObjectInfo{Key: ObjectKey(&runs[i])}
	}
	close(objects)

	var errs []error
	for rerr := range a.client.RemoveObjects(ctx, a.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}
