package portals

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cohort-indexer/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectSink keeps one object per record in a bucket.
type ObjectSink struct {
	client storage.Client
	bucket string
	prefix string
}

// NewObjectSink creates a sink writing under prefix in bucket.
func NewObjectSink(client storage.Client, bucket, prefix string) *ObjectSink {
	return &ObjectSink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *ObjectSink) key(id string) string {
	return path.Join(s.prefix, fileName(id))
}

// Load implements Sink.
func (s *ObjectSink) Load(ctx context.Context, id string) (Record, error) {
	data, err := s.read(ctx, s.key(id))
	if err != nil {
		if isNoSuchKey(err) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	rec, err := decode(data)
	if err != nil {
		return Record{}, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return rec, nil
}

// Save implements Sink.
func (s *ObjectSink) Save(ctx context.Context, id string, rec Record) error {
	data, err := encode(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", id, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(id), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put record %s: %w", id, err)
	}
	return nil
}

// List implements Sink.
func (s *ObjectSink) List(ctx context.Context) ([]Record, error) {
	opts := minio.ListObjectsOptions{Prefix: s.prefix + "/", Recursive: true}

	var records []Record
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list records: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		data, err := s.read(ctx, obj.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", obj.Key, err)
		}
		rec, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", obj.Key, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *ObjectSink) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

// isNoSuchKey detects a missing object. MinIO reports it lazily on read.
func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
