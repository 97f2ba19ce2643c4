package registry

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/sirupsen/logrus"
)

// S3Store writes registry documents into a single S3 bucket
type S3Store struct {
	bucket   string
	uploader s3manageriface.UploaderAPI
	log      logrus.FieldLogger
}

// NewS3Store creates a store for the bucket using the supplied AWS session
func NewS3Store(sess client.ConfigProvider, bucket string, log logrus.FieldLogger) *S3Store {
	return NewS3StoreWithUploader(s3manager.NewUploader(sess), bucket, log)
}

// NewS3StoreWithUploader creates a store around an existing uploader
func NewS3StoreWithUploader(uploader s3manageriface.UploaderAPI, bucket string, log logrus.FieldLogger) *S3Store {
	return &S3Store{bucket: bucket, uploader: uploader, log: log}
}

// Put writes (or overwrites) the object at key
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {

	start := time.Now()
	log := s.log.WithField("bucket", s.bucket).WithField("key", key)
	log.Debugf("uploading %d bytes", len(body))

	_, err := s.uploader.UploadWithContext(ctx,
		&s3manager.UploadInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})

	if err != nil {
		return &WriteError{Bucket: s.bucket, Key: key, Err: err}
	}

	duration := time.Since(start)
	log.Infof("upload of s3://%s/%s complete in %0.2f seconds", s.bucket, key, duration.Seconds())
	return nil
}

//
// end of file
//
