package filestore

import "time"

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Bucket and Key locate the object (e.g. "types", "shop/shop.d.ts").
	Bucket string
	Key    string

	// Size is the byte size of the object.
	Size int64

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// LastModified is when the object was last written.
	// May be zero if the backend does not report it on upload.
	LastModified time.Time
}
