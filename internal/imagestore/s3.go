package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/roomedit"
)

// S3API is the part of *s3.Client the store calls.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps images as objects under prefix in one bucket. Refs are
// s3://bucket/key URIs.
type S3Store struct {
	client    S3API
	presigner *s3.PresignClient
	bucket    string
	prefix    string
}

// NewS3Store returns a store writing to bucket under prefix (e.g. "rooms/").
// presigner may be nil when URLs are not needed.
func NewS3Store(client S3API, presigner *s3.PresignClient, bucket, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, presigner: presigner, bucket: bucket, prefix: prefix}
}

// Put uploads data under a fresh key.
func (s *S3Store) Put(ctx context.Context, data []byte, contentType string) (roomedit.ImageRef, error) {
	contentType = sniff(data, contentType)
	key := s.prefix + newName(contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("S3 PutObject: %w", err)
	}
	ref := roomedit.ImageRef(fmt.Sprintf("s3://%s/%s", s.bucket, key))
	log.Debug().Str("ref", string(ref)).Int("bytes", len(data)).Msg("Image uploaded to S3")
	return ref, nil
}

// Get downloads the object behind ref.
func (s *S3Store) Get(ctx context.Context, ref roomedit.ImageRef) (Blob, error) {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return Blob{}, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return Blob{}, notFound(ref)
		}
		return Blob{}, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Blob{}, fmt.Errorf("download %s: %w", ref, err)
	}
	var ct string
	if out.ContentType != nil {
		ct = *out.ContentType
	}
	return Blob{Data: data, ContentType: sniff(data, ct)}, nil
}

// URL returns a pre-signed GET URL for ref.
func (s *S3Store) URL(ctx context.Context, ref roomedit.ImageRef, expiry time.Duration) (string, error) {
	if s.presigner == nil {
		return "", fmt.Errorf("presigning not configured")
	}
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return "", err
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject: %w", err)
	}
	return req.URL, nil
}

// ParseS3Ref splits an s3://bucket/key ref.
func ParseS3Ref(ref roomedit.ImageRef) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(string(ref), "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 ref: %q", ref)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 ref: %q", ref)
	}
	return bucket, key, nil
}
