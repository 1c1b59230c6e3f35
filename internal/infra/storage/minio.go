package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/semantic-guard/internal/domain/analyses"
)

const keyPrefix = "analyses/"

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// ObjectKey is where a record is archived inside the bucket.
func ObjectKey(id domain.AnalysisID) string {
	return keyPrefix + string(id) + ".json"
}

// Encode returns the archived bytes of rec and their SHA-256 in hex.
func Encode(rec *domain.AnalysisRecord) ([]byte, string, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, "", fmt.Errorf("encode analysis %s: %w", rec.ID, err)
	}
	sum := sha256.Sum256(b)
	return b, hex.EncodeToString(sum[:]), nil
}

// Put implementasi Archive. Re-archiving the same id overwrites the object,
// matching the repository's upsert.
func (s *Store) Put(ctx context.Context, rec *domain.AnalysisRecord) (string, error) {
	body, digest, err := Encode(rec)
	if err != nil {
		return "", err
	}
	key := ObjectKey(rec.ID)

	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"sha256":       digest,
			"submitter":    rec.Submitter,
			"block-height": strconv.FormatUint(rec.BlockHeight, 10),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	url := fmt.Sprintf("%s://%s/%s/%s", s.client.EndpointURL().Scheme, s.client.EndpointURL().Host, s.bucketName, key)
	return url, nil
}

// Ping checks the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
