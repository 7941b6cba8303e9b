package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store resolves gallery media references against the platform's S3
// bucket. References are object keys, uploaded out of band.
type Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewStore(client *s3.Client, bucket, baseURL string) *Store {
	return &Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Verify confirms the object exists without fetching it.
func (s *Store) Verify(ctx context.Context, key string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("media object %s not found: %w", key, err)
	}

	return nil
}

// PublicURL returns the CDN-facing URL for a stored object key.
func (s *Store) PublicURL(key string) string {
	if s.baseURL == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
	}
	return s.baseURL + "/" + key
}
