// Package media hands out short-lived presigned URLs for direct object
// storage access. Uploads never pass through the API server: clients PUT
// straight to the bucket and hand the returned key back to the video API.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid/v5"
)

// URLTTL bounds how long a presigned URL stays usable.
const URLTTL = 15 * time.Minute

// Config holds object storage connection settings. BaseEndpoint is set when
// targeting a non-AWS S3 implementation such as MinIO.
type Config struct {
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (string, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error)
}

type s3Presigner struct{ pc *s3.PresignClient }

func (p s3Presigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (string, error) {
	req, err := p.pc.PresignPutObject(ctx, in, optFns...)
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (p s3Presigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error) {
	req, err := p.pc.PresignGetObject(ctx, in, optFns...)
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Storage issues presigned PUT and GET URLs against one bucket.
type Storage struct {
	bucket   string
	presign  presignAPI
	now      func() time.Time
	randUUID func() (uuid.UUID, error)
}

// New builds a Storage from config.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.BaseEndpoint != ""
	})
	return &Storage{
		bucket:   cfg.Bucket,
		presign:  s3Presigner{pc: s3.NewPresignClient(client)},
		now:      time.Now,
		randUUID: uuid.NewV4,
	}, nil
}

// Upload is a presigned PUT grant: the client PUTs the object to URL, then
// refers to it by Key.
type Upload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// NewUpload mints a date-partitioned storage key under the given prefix and
// a presigned PUT URL for it.
func (s *Storage) NewUpload(ctx context.Context, prefix string) (*Upload, error) {
	id, err := s.randUUID()
	if err != nil {
		return nil, err
	}
	d := s.now().UTC()
	key := fmt.Sprintf("%s/%04d/%02d/%02d/%s", prefix, d.Year(), d.Month(), d.Day(), id)

	url, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(URLTTL))
	if err != nil {
		return nil, err
	}
	return &Upload{Key: key, URL: url}, nil
}

// DownloadURL returns a presigned GET URL for an existing storage key. An
// empty key resolves to an empty URL so optional thumbnails stay optional.
func (s *Storage) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(URLTTL))
}
