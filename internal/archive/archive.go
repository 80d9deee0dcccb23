// Package archive persists captured media to S3-compatible object storage.
//
// Archiving is a side channel for audit retention. Submission to the
// verification backend never depends on it; an archive failure is logged and
// the workflow proceeds.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultBucket holds captured media unless overridden.
const DefaultBucket = "ioops-captures"

// Opts holds archive configuration.
type Opts struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Option configures archive construction.
type Option func(*Opts)

// WithEndpoint sets the object storage endpoint, e.g. minio.internal:9000.
func WithEndpoint(endpoint string) Option {
	return func(o *Opts) { o.Endpoint = endpoint }
}

// WithCredentials sets the access key pair.
func WithCredentials(accessKey, secretKey string) Option {
	return func(o *Opts) { o.AccessKey = accessKey; o.SecretKey = secretKey }
}

// WithBucket overrides the capture bucket name.
func WithBucket(bucket string) Option {
	return func(o *Opts) { o.Bucket = bucket }
}

// WithSSL enables TLS to the endpoint.
func WithSSL(useSSL bool) Option {
	return func(o *Opts) { o.UseSSL = useSSL }
}

// Archive writes captured frames to object storage keyed by session token and
// capture slot.
type Archive struct {
	client *minio.Client
	bucket string
}

// New creates an archive client.
func New(opts ...Option) (*Archive, error) {
	cfg := Opts{Bucket: DefaultBucket}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint not set")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	slog.Debug("archive client created", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the capture bucket if it does not exist.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	slog.Info("Archive.EnsureBucket: bucket created", "bucket", a.bucket)
	return nil
}

// Store writes one captured frame under <token>/<slot>.jpg, replacing any
// previous capture for that slot. Retakes therefore keep only the frame the
// recipient accepted.
func (a *Archive) Store(ctx context.Context, token, slot string, data []byte) error {
	if token == "" || slot == "" {
		return fmt.Errorf("token and slot are required")
	}
	key := fmt.Sprintf("%s/%s.jpg", token, slot)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	slog.Debug("Archive.Store: frame archived", "key", key, "bytes", len(data))
	return nil
}

// Fetch reads one archived frame back, mainly for audit tooling.
func (a *Archive) Fetch(ctx context.Context, token, slot string) ([]byte, error) {
	key := fmt.Sprintf("%s/%s.jpg", token, slot)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}
