package mediabackend

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher delivers an exported clip and returns where it ended up.
type Publisher interface {
	Publish(ctx context.Context, localPath, name string) (string, error)
}

// FSPublisher moves exported clips into a directory.
type FSPublisher struct {
	dir string
}

func NewFSPublisher(dir string) (*FSPublisher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export dir: %w", err)
	}
	return &FSPublisher{dir: dir}, nil
}

func (p *FSPublisher) Publish(ctx context.Context, localPath, name string) (string, error) {
	dest := filepath.Join(p.dir, filepath.Base(name))
	if err := os.Rename(localPath, dest); err == nil {
		return dest, nil
	}

	// rename fails across filesystems
	if err := copyFile(localPath, dest); err != nil {
		return "", fmt.Errorf("failed to publish %s: %w", name, err)
	}
	os.Remove(localPath)
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// S3API is the subset of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads exported clips to a bucket.
type S3Publisher struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Publisher loads the default AWS configuration from the environment.
func NewS3Publisher(ctx context.Context, bucket, prefix string) (*S3Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewS3PublisherWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewS3PublisherWithClient(client S3API, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: prefix}
}

func (p *S3Publisher) Publish(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	key := path.Join(p.prefix, path.Base(filepath.ToSlash(name)))

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	os.Remove(localPath)
	return fmt.Sprintf("s3://%s/%s", p.bucket, key), nil
}
