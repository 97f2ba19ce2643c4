package announce

import "encoding/json"

// this describes the structure of the announcement published by the FreeBSD project
// for each new snapshot AMI. The required fields are pointers so that absent fields can
// be told apart from empty ones. Regions and images are kept raw and only the target
// region is decoded, so oddly shaped data elsewhere does not spoil the announcement.

type Announcement struct {
	V1 *AnnouncementV1 `json:"v1"`
}

type AnnouncementV1 struct {
	ReleaseVersion *string                    `json:"ReleaseVersion"`
	ImageVersion   *string                    `json:"ImageVersion"`
	Regions        map[string]json.RawMessage `json:"Regions"`
}

type ImageDescriptor struct {
	Name         json.RawMessage `json:"Name"`
	ImageId      json.RawMessage `json:"ImageId"`
	Architecture json.RawMessage `json:"Architecture"`
}

// Entry is the registry document stored for each architecture/release pair.
// The field names are read by downstream consumers and must not change. Name and
// ImageId are left out when the announcement did not supply them.
type Entry struct {
	Name         *string `json:"Name,omitempty"`
	ImageId      *string `json:"ImageId,omitempty"`
	ImageVersion string  `json:"ImageVersion"`
}

// WriteRequest is a single registry update produced by the filter
type WriteRequest struct {
	Key         string
	Body        []byte
	ContentType string
}

// returns the value of a raw field when it holds a JSON string, nil otherwise
func stringValue(raw json.RawMessage) *string {

	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

//
// end of file
//
