package models

import "fmt"

// Bucket is a named, independent ordering domain (a menu position).
// Only the values declared below are valid; use ParseBucket at every boundary.
type Bucket string

const (
	BucketHeader        Bucket = "header"
	BucketFooter        Bucket = "footer"
	BucketFooterColumn1 Bucket = "footer-column-1"
	BucketFooterColumn2 Bucket = "footer-column-2"
)

// Buckets returns every valid bucket in display order.
func Buckets() []Bucket {
	return []Bucket{BucketHeader, BucketFooter, BucketFooterColumn1, BucketFooterColumn2}
}

// ParseBucket converts s into a Bucket or returns an error for unknown positions.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown bucket %q", s)
	}
	return b, nil
}

// Valid reports whether b is one of the declared buckets.
func (b Bucket) Valid() bool {
	switch b {
	case BucketHeader, BucketFooter, BucketFooterColumn1, BucketFooterColumn2:
		return true
	}
	return false
}

// String returns the underlying string value.
func (b Bucket) String() string {
	return string(b)
}
