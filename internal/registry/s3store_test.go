package registry

import (
	"context"
	"errors"
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	inputs []*s3manager.UploadInput
	bodies []string
	err    error
}

func (u *fakeUploader) Upload(input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return u.UploadWithContext(context.Background(), input, opts...)
}

func (u *fakeUploader) UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	body, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.inputs = append(u.inputs, input)
	u.bodies = append(u.bodies, string(body))
	if u.err != nil {
		return nil, u.err
	}
	return &s3manager.UploadOutput{Location: "s3://" + aws.StringValue(input.Bucket) + "/" + aws.StringValue(input.Key)}, nil
}

func TestS3StorePut(t *testing.T) {
	logger, _ := test.NewNullLogger()
	uploader := &fakeUploader{}
	store := NewS3StoreWithUploader(uploader, "ami-registry", logger)

	err := store.Put(context.Background(), "amd64/12.0-STABLE/latest.json", []byte(`{"Name":"n"}`), "application/json")
	require.NoError(t, err)

	require.Len(t, uploader.inputs, 1)
	in := uploader.inputs[0]
	assert.Equal(t, "ami-registry", aws.StringValue(in.Bucket))
	assert.Equal(t, "amd64/12.0-STABLE/latest.json", aws.StringValue(in.Key))
	assert.Equal(t, "application/json", aws.StringValue(in.ContentType))
	assert.Equal(t, `{"Name":"n"}`, uploader.bodies[0])
}

func TestS3StorePutFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	cause := errors.New("access denied")
	store := NewS3StoreWithUploader(&fakeUploader{err: cause}, "ami-registry", logger)

	err := store.Put(context.Background(), "arm64/13.0-CURRENT/latest.json", []byte(`{}`), "application/json")
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "ami-registry", writeErr.Bucket)
	assert.Equal(t, "arm64/13.0-CURRENT/latest.json", writeErr.Key)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "writing s3://ami-registry/arm64/13.0-CURRENT/latest.json: access denied", err.Error())

	// only the debug line, no completion message
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

//
// end of file
//
