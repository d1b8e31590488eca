package checks

import (
	"context"
	"fmt"

	"forecast-recon/core/storage"
	"forecast-recon/feature/reconciliation"
	"forecast-recon/feature/reconciliation/models"
)

// CheckArchive returns the object keys of runs that have no archive in bucket.
func CheckArchive(ctx context.Context, client storage.Client, bucket, period string, runs []models.ReconciliationRun) ([]string, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	keys, err := reconciliation.NewArchive(client, bucket).Keys(ctx, period)
	if err != nil {
		return nil, err
	}
	present := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		present[k] = struct{}{}
	}

	missing := make([]string, 0)
	for i := range runs {
		key := reconciliation.ObjectKey(&runs[i])
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing, nil
}
