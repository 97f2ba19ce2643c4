package registry

import (
	"context"
	"fmt"
)

// Store is the key/value object store holding the registry documents
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// WriteError is returned when a registry document could not be written
type WriteError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing s3://%s/%s: %s", e.Bucket, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

//
// end of file
//
