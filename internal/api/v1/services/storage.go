package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"lazo-pipeline/internal/app/api/provider"
	"lazo-pipeline/internal/app/utils"
)

// MinioConfig holds the object storage connection settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioAudioArchive keeps a copy of every submitted recording in a MinIO bucket
type MinioAudioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioAudioArchive connects to MinIO and creates the bucket when missing
func NewMinioAudioArchive(ctx context.Context, cfg MinioConfig) (*MinioAudioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioAudioArchive{client: client, bucket: cfg.Bucket}, nil
}

// ObjectKey returns sessions/<owner>/<job>/<file>
func ObjectKey(ownerID, jobID, fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "audio"
	}
	return fmt.Sprintf("sessions/%s/%s/%s", ownerID, jobID, name)
}

// Archive uploads the recording and returns its object key
func (s *MinioAudioArchive) Archive(ctx context.Context, ownerID, jobID string, audio *provider.AudioInput) (string, error) {
	key := ObjectKey(ownerID, jobID, audio.FileName)

	contentType := audio.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(audio.Data), int64(len(audio.Data)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"original-name": audio.FileName,
			"user-id":       ownerID,
			"job-id":        jobID,
			"sha256":        utils.HashBytes(audio.Data),
			"uploaded-at":   time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to MinIO: %w", err)
	}
	return key, nil
}
