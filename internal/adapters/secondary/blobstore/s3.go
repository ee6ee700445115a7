package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// putObjectAPI est le sous-ensemble du client S3 utilisé (mockable en test)
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // S3-compatible (R2, MinIO), vide pour AWS
	PublicBaseURL   string // préfixe des URLs retournées, optionnel
	Prefix          string // ex: "uploads"
}

type S3Store struct {
	client  putObjectAPI
	bucket  string
	baseURL string
	prefix  string
	now     func() time.Time
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	opts.Bucket = strings.TrimSpace(opts.Bucket)
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, opts), nil
}

func newS3Store(client putObjectAPI, opts S3Options) *S3Store {
	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		if opts.Endpoint != "" {
			baseURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", opts.Bucket)
		}
	}
	prefix := strings.Trim(opts.Prefix, "/")
	if prefix == "" {
		prefix = "uploads"
	}
	return &S3Store{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: baseURL,
		prefix:  prefix,
		now:     time.Now,
	}
}

// PutBlob upload les octets et retourne l'URL publique de l'objet
func (s *S3Store) PutBlob(ctx context.Context, data []byte, contentType string) (string, error) {
	key := s.objectKey(contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// objectKey : uploads/2024_01_31/<uuid>.jpeg
func (s *S3Store) objectKey(contentType string) string {
	ext := ".bin"
	if strings.HasPrefix(contentType, "image/") {
		ext = "." + strings.TrimPrefix(contentType, "image/")
	} else if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	day := s.now().UTC().Format("2006_01_02")
	return fmt.Sprintf("%s/%s/%s%s", s.prefix, day, uuid.NewString(), ext)
}
