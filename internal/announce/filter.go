package announce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedPayload is returned when an announcement cannot be parsed or is missing
// one of its required fields. It is a permanent condition for that payload.
var ErrMalformedPayload = errors.New("unrecognized message")

// the content type of every registry document
const ContentTypeJSON = "application/json"

// Filter selects the images from an announcement that belong in the registry
type Filter struct {
	region          string
	architectures   map[string]string
	ignoredReleases []string
}

// NewFilter creates a filter for the target region. architectures maps provider labels
// onto the labels used in registry keys; anything not in the table is ignored.
func NewFilter(region string, architectures map[string]string, ignoredReleases []string) *Filter {

	archs := make(map[string]string, len(architectures))
	for k, v := range architectures {
		archs[k] = v
	}
	ignored := append([]string(nil), ignoredReleases...)

	return &Filter{region: region, architectures: archs, ignoredReleases: ignored}
}

// Key returns the registry key holding the latest image for an architecture and release
func Key(arch string, release string) string {
	return fmt.Sprintf("%s/%s/latest.json", arch, release)
}

// Filter turns a single announcement payload into zero or more registry writes.
// It has no side effects.
func (f *Filter) Filter(payload string) ([]WriteRequest, error) {

	var msg Announcement
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return nil, errors.Wrapf(ErrMalformedPayload, "json unmarshal: %s", err)
	}

	v1 := msg.V1
	if v1 == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "missing v1")
	}
	if v1.ReleaseVersion == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "missing ReleaseVersion")
	}
	if v1.ImageVersion == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "missing ImageVersion")
	}
	if v1.Regions == nil {
		return nil, errors.Wrap(ErrMalformedPayload, "missing Regions")
	}

	release := *v1.ReleaseVersion
	region, found := v1.Regions[f.region]
	if found == false || f.ignored(release) {
		// nothing to do for this event
		return []WriteRequest{}, nil
	}

	// a region that is not a list of images has nothing we can use
	var images []json.RawMessage
	if err := json.Unmarshal(region, &images); err != nil {
		return []WriteRequest{}, nil
	}

	requests := make([]WriteRequest, 0, len(images))
	for _, raw := range images {

		var image ImageDescriptor
		if err := json.Unmarshal(raw, &image); err != nil {
			continue
		}

		label := stringValue(image.Architecture)
		if label == nil {
			continue
		}
		arch, found := f.architectures[*label]
		if found == false {
			continue
		}

		body, err := encodeEntry(Entry{
			Name:         stringValue(image.Name),
			ImageId:      stringValue(image.ImageId),
			ImageVersion: *v1.ImageVersion,
		})
		if err != nil {
			return nil, err
		}

		requests = append(requests, WriteRequest{
			Key:         Key(arch, release),
			Body:        body,
			ContentType: ContentTypeJSON,
		})
	}

	return requests, nil
}

func (f *Filter) ignored(release string) bool {
	for _, prefix := range f.ignoredReleases {
		if strings.HasPrefix(release, prefix) {
			return true
		}
	}
	return false
}

// image names are free text so we do not want '<', '>' and '&' escaped
func encodeEntry(entry Entry) ([]byte, error) {

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return nil, errors.Wrap(err, "json marshal")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

//
// end of file
//
