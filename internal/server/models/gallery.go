package models

import "time"

// GalleryImage is a hosted picture shown on the public gallery. StorageKey is
// the object-host key used to delete it.
type GalleryImage struct {
	ID         string    `json:"_id"`
	URL        string    `json:"image"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
