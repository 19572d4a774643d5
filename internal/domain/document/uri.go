package document

import "strings"

// S3Scheme is the locator prefix the knowledge base reports for S3-backed sources
const S3Scheme = "s3://"

// FallbackFilename is returned when a locator yields no usable filename
const FallbackFilename = "document"

// ExtractFilename returns the last slash-delimited segment of uri.
// Malformed or empty locators yield FallbackFilename instead of an error.
func ExtractFilename(uri string) string {
	name := uri
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		name = uri[idx+1:]
	}
	if name == "" {
		return FallbackFilename
	}
	return name
}

// ParseS3URI splits an s3://bucket/key locator. The bucket ends at the first
// slash after the scheme; everything after it is the key and may contain
// further slashes. ok is false for non-s3 locators and empty buckets.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, S3Scheme)
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, key, true
}

// ObjectURL builds the public-style (non-presigned) URL of an object
func ObjectURL(bucket, region, key string) string {
	return "https://" + bucket + ".s3." + region + ".amazonaws.com/" + key
}
