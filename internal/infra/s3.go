package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"sealed-mail/internal/domain"
)

// NewS3Client はリージョンとエンドポイントを指定してS3クライアントを生成する。
// endpoint が空の場合はAWSの既定エンドポイントを使用する。
func NewS3Client(region, endpoint string) (*s3.S3, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return s3.New(sess), nil
}

// S3Store はS3の1バケットをオブジェクトストアとして扱う。
type S3Store struct {
	client *s3.S3
	bucket string
	region string
}

// NewS3Store は新しいS3Storeを生成する。
func NewS3Store(client *s3.S3, bucket, region string) *S3Store {
	return &S3Store{client: client, bucket: bucket, region: region}
}

func (s *S3Store) Bucket() string { return s.bucket }
func (s *S3Store) Region() string { return s.region }

// Upload はオブジェクトを保存する。
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: aws.StringMap(metadata),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to upload object",
			"operation", "upload",
			"bucket", s.bucket,
			"key", key,
			"error", err,
		)
		return s.translate(key, err)
	}
	return nil
}

// Download はオブジェクトの内容とメタデータを取得する。
func (s *S3Store) Download(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, s.translate(key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, &domain.ObjectInfo{
		Key:          key,
		Size:         aws.Int64Value(out.ContentLength),
		LastModified: aws.TimeValue(out.LastModified),
		Metadata:     normalizeMetadata(out.Metadata),
	}, nil
}

// List は接頭辞に一致するオブジェクトを全件取得する。
func (s *S3Store) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	var objects []domain.ObjectInfo
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, o := range page.Contents {
			objects = append(objects, domain.ObjectInfo{
				Key:          aws.StringValue(o.Key),
				Size:         aws.Int64Value(o.Size),
				LastModified: aws.TimeValue(o.LastModified),
			})
		}
		return true
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list objects",
			"operation", "list",
			"bucket", s.bucket,
			"prefix", prefix,
			"error", err,
		)
		return nil, s.translate(prefix, err)
	}
	return objects, nil
}

// GetObjectMetadata はオブジェクトのメタデータのみを取得する。
func (s *S3Store) GetObjectMetadata(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.translate(key, err)
	}
	return &domain.ObjectInfo{
		Key:          key,
		Size:         aws.Int64Value(out.ContentLength),
		LastModified: aws.TimeValue(out.LastModified),
		Metadata:     normalizeMetadata(out.Metadata),
	}, nil
}

// Delete はオブジェクトを削除する。存在しない場合は ErrObjectNotFound を返す。
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if _, err := s.GetObjectMetadata(ctx, key); err != nil {
		return err
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete object",
			"operation", "delete",
			"bucket", s.bucket,
			"key", key,
			"error", err,
		)
		return s.translate(key, err)
	}
	return nil
}

func (s *S3Store) translate(key string, err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return fmt.Errorf("%w: s3://%s/%s", domain.ErrObjectNotFound, s.bucket, key)
		case request.CanceledErrorCode:
			if cause := aerr.OrigErr(); cause != nil {
				return cause
			}
			return context.Canceled
		}
	}
	return fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err)
}

// normalizeMetadata はS3が先頭大文字に正規化したメタデータキーを小文字に戻す。
func normalizeMetadata(m map[string]*string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = aws.StringValue(v)
	}
	return out
}
