package model

import "time"

// BlobDescriptor identifies one stored log object. Produced by listing;
// never mutated after that.
type BlobDescriptor struct {
	Name         string    `json:"name"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
}
