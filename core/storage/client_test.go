package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"forecast-recon/core/storage"
	"forecast-recon/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"ValidConfig", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Region: "us-east-1"}},
		{"EndpointWithHTTP", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"EndpointWithHTTPS", storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "recon").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "recon", ""))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "recon").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "recon", minio.MakeBucketOptions{Region: "ap-northeast-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, client, "recon", "ap-northeast-1"))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "recon").Return(false, errors.New("denied"))

		assert.ErrorContains(t, storage.EnsureBucket(ctx, client, "recon", ""), "denied")
	})
}

func TestConfig_HostAndTimeout(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		host    string
		timeout time.Duration
	}{
		{"Plain", storage.Config{Endpoint: "minio:9000", TimeoutSeconds: 5}, "minio:9000", 5 * time.Second},
		{"HTTP Prefix", storage.Config{Endpoint: "http://minio:9000"}, "minio:9000", 30 * time.Second},
		{"HTTPS Prefix", storage.Config{Endpoint: "https://s3.amazonaws.com", TimeoutSeconds: -2}, "s3.amazonaws.com", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.host, tt.cfg.Host())
			assert.Equal(t, tt.timeout, tt.cfg.Timeout())
		})
	}
}
