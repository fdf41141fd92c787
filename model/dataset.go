// api/model/dataset.go
package model

import "time"

// DatasetMetadata is the public, discoverable record for a private dataset.
type DatasetMetadata struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	Size        int       `json:"size" yaml:"size"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Tags        []string  `json:"tags" yaml:"tags"`
	AccessLevel string    `json:"access_level" yaml:"access_level"`
	OwnerEmail  string    `json:"owner_email" yaml:"owner_email"`
}
