package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"go-doc-library/internal/metrics"
	"go-doc-library/internal/model"
	"go-doc-library/internal/util"
)

const (
	DefaultPresignTTL       = time.Hour
	DefaultS3Region         = "us-east-1"
	defaultOperationTimeout = 30 * time.Second

	imageCacheControl = "max-age=31536000"
)

type S3Config struct {
	AccessKeyID      string
	SecretAccessKey  string
	Bucket           string
	Region           string
	Endpoint         string
	PresignTTL       time.Duration
	OperationTimeout time.Duration
}

func (c S3Config) missing() []string {
	var missing []string
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "AWS_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "AWS_SECRET_ACCESS_KEY")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "AWS_S3_BUCKET")
	}
	return missing
}

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Backend keeps objects in an S3 compatible bucket. The client is built
// once and shared by all requests.
type S3Backend struct {
	objects    objectAPI
	presigner  presignAPI
	bucket     string
	presignTTL time.Duration
	opTimeout  time.Duration
}

func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if missing := cfg.missing(); len(missing) > 0 {
		return nil, backendError(model.BackendConfigurationMissing, KindS3, "init", "",
			fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}

	region := cfg.Region
	if region == "" {
		region = DefaultS3Region
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, backendError(model.BackendConfigurationMissing, KindS3, "init", "", fmt.Errorf("load aws config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Backend(cfg, client, s3.NewPresignClient(client)), nil
}

func newS3Backend(cfg S3Config, objects objectAPI, presigner presignAPI) *S3Backend {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}
	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}

	return &S3Backend{
		objects:    objects,
		presigner:  presigner,
		bucket:     cfg.Bucket,
		presignTTL: ttl,
		opTimeout:  timeout,
	}
}

func (b *S3Backend) Kind() Kind {
	return KindS3
}

func (b *S3Backend) Store(ctx context.Context, content io.Reader, originalName string, size int64, category model.Category) (StoredObject, error) {
	key, fileName := NewStorageKey(category, originalName)
	contentType := util.ContentTypeForName(fileName)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	switch {
	case util.IsImageMIME(contentType):
		input.CacheControl = aws.String(imageCacheControl)
	case util.IsPDFMIME(contentType):
		input.ContentDisposition = aws.String(mime.FormatMediaType("inline", map[string]string{"filename": fileName}))
	}

	opCtx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	start := time.Now()
	_, err := b.objects.PutObject(opCtx, input)
	metrics.RecordStorageOperation(string(KindS3), "store", time.Since(start), err == nil)
	if err != nil {
		if isPreconditionFailed(err) {
			err = errors.Join(ErrKeyExists, err)
		}
		return StoredObject{}, backendError(model.BackendRemoteFailure, KindS3, "store", key, err)
	}
	metrics.RecordStoredBytes(string(KindS3), size)

	return StoredObject{
		OriginalName: fileName,
		StorageKey:   key,
		SizeBytes:    size,
		ContentType:  contentType,
	}, nil
}

func (b *S3Backend) Locate(ctx context.Context, key string) (model.Locator, error) {
	start := time.Now()
	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(b.presignTTL))
	metrics.RecordStorageOperation(string(KindS3), "presign", time.Since(start), err == nil)
	if err != nil {
		return model.Locator{}, backendError(model.BackendRemoteFailure, KindS3, "locate", key, err)
	}

	expiresAt := start.Add(b.presignTTL).UTC()
	return model.Locator{Kind: model.LocatorURL, Value: req.URL, ExpiresAt: &expiresAt}, nil
}

func (b *S3Backend) Delete(ctx context.Context, key string) (bool, error) {
	exists, err := b.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	start := time.Now()
	_, err = b.objects.DeleteObject(opCtx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorageOperation(string(KindS3), "delete", time.Since(start), err == nil)
	if err != nil {
		return false, backendError(model.BackendRemoteFailure, KindS3, "delete", key, err)
	}

	return true, nil
}

func (b *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	start := time.Now()
	_, err := b.objects.HeadObject(opCtx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorageOperation(string(KindS3), "head", time.Since(start), err == nil || isNotFound(err))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, backendError(model.BackendRemoteFailure, KindS3, "exists", key, err)
	}

	return true, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}
