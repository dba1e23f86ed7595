package mediabackend

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return path
}

func TestFSPublisher(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	pub, err := NewFSPublisher(dir)
	if err != nil {
		t.Fatalf("NewFSPublisher() error = %v", err)
	}

	local := writeTemp(t, "talk_clip_001.mp4", "clip")
	out, err := pub.Publish(context.Background(), local, "talk_clip_001.mp4")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if out != filepath.Join(dir, "talk_clip_001.mp4") {
		t.Errorf("output = %q", out)
	}
	if data, _ := os.ReadFile(out); string(data) != "clip" {
		t.Errorf("published content = %q", data)
	}
	if _, err := os.Stat(local); !os.IsNotExist(err) {
		t.Error("local file should be moved")
	}
}

func TestS3Publisher(t *testing.T) {
	client := &fakeS3{}
	pub := NewS3PublisherWithClient(client, "clips", "exports/2026")

	local := writeTemp(t, "talk_clip_002.mp4", "clip bytes")
	out, err := pub.Publish(context.Background(), local, "talk_clip_002.mp4")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if out != "s3://clips/exports/2026/talk_clip_002.mp4" {
		t.Errorf("output = %q", out)
	}
	if aws.ToString(client.input.Bucket) != "clips" || aws.ToString(client.input.Key) != "exports/2026/talk_clip_002.mp4" {
		t.Errorf("put input = %s/%s", aws.ToString(client.input.Bucket), aws.ToString(client.input.Key))
	}
	if aws.ToString(client.input.ContentType) != "video/mp4" {
		t.Errorf("content type = %q", aws.ToString(client.input.ContentType))
	}
	if string(client.body) != "clip bytes" {
		t.Errorf("uploaded body = %q", client.body)
	}
}

func TestS3Publisher_Error(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	pub := NewS3PublisherWithClient(client, "clips", "")

	local := writeTemp(t, "a.mp4", "x")
	if _, err := pub.Publish(context.Background(), local, "a.mp4"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(local); err != nil {
		t.Error("local file should remain after a failed upload")
	}
}
