package config

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinioClient builds the MinIO client for the configured storage backend.
func NewMinioClient(cfg Storage) (*minio.Client, error) {
	return minio.New(cfg.MinioURL, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecretKey, ""),
		Secure: false,
	})
}
