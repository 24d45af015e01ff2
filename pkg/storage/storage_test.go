package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	headErr error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[aws.StringValue(in.Key)]; !ok {
		return nil, awserr.NewRequestFailure(awserr.New("NotFound", "not found", nil), 404, "req-1")
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3Archive_PutAndExists(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	a := NewS3ArchiveWithClient(fake, "libretas", "reports")

	key, err := a.Put(context.Background(), "3/libreta.xlsx", "application/octet-stream", []byte("xlsx"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if key != "reports/3/libreta.xlsx" {
		t.Errorf("unexpected key %q", key)
	}
	if string(fake.objects[key]) != "xlsx" {
		t.Error("object body not stored")
	}

	ok, err := a.Exists(context.Background(), "3/libreta.xlsx")
	if err != nil || !ok {
		t.Errorf("expected object to exist, ok=%v err=%v", ok, err)
	}

	ok, err = a.Exists(context.Background(), "3/otra.xlsx")
	if err != nil || ok {
		t.Errorf("expected missing object, ok=%v err=%v", ok, err)
	}
}

func TestS3Archive_ExistsError(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, headErr: errors.New("timeout")}
	a := NewS3ArchiveWithClient(fake, "libretas", "")

	if _, err := a.Exists(context.Background(), "x"); err == nil {
		t.Fatal("expected error to propagate")
	}
}
