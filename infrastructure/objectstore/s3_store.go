package objectstore

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"vidmarket/domain/model"
	"vidmarket/domain/repository"
)

// S3Store mints presigned URLs against an S3-compatible bucket and performs
// the size probe / ranged fetches the streaming engine needs against an
// already-signed URL.
type S3Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	httpc     *http.Client
	bucket    string
}

// NewS3Store supports AWS S3 and S3-compatible services like MinIO.
func NewS3Store(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string) (repository.IObjectStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	}
	if endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(endpoint))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true // required for MinIO and other S3-compatible services
	})

	return &S3Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		httpc:     &http.Client{Timeout: 0},
		bucket:    bucket,
	}, nil
}

func (s *S3Store) MintSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	res, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign get for %s: %w", key, err)
	}
	return res.URL, nil
}

func (s *S3Store) MintDownloadURL(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	disposition := fmt.Sprintf("attachment; filename=%q", filename)
	res, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return res.URL, nil
}

func (s *S3Store) MintUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	res, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign put for %s: %w", key, err)
	}
	return res.URL, nil
}

// ProbeSize issues a one-byte ranged GET and reads the total from
// Content-Range. A presigned GET URL rejects HEAD (the signature covers
// the verb), so this is the portable size query.
func (s *S3Store) ProbeSize(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent:
		return parseContentRangeTotal(resp.Header.Get("Content-Range"))
	case http.StatusOK:
		// Upstream ignored the range header; fall back to the full length.
		if resp.ContentLength >= 0 {
			return resp.ContentLength, nil
		}
		return 0, fmt.Errorf("upstream returned 200 without a content length")
	default:
		return 0, fmt.Errorf("size probe failed with status %d", resp.StatusCode)
	}
}

func (s *S3Store) FetchRange(ctx context.Context, url string, start, end int64) (*model.RangeReply, error) {
	// The request context carries the caller's disconnect, so an abandoned
	// stream cancels the upstream transfer too.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	return &model.RangeReply{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		Body:          resp.Body,
	}, nil
}

func parseContentRangeTotal(header string) (int64, error) {
	// Format: "bytes 0-0/12345".
	idx := strings.LastIndexByte(header, '/')
	if idx < 0 || idx == len(header)-1 {
		return 0, fmt.Errorf("malformed Content-Range %q", header)
	}
	total, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range %q", header)
	}
	return total, nil
}
