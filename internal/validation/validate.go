// Package validation checks bucket names and key prefixes before any request
// is sent to the storage backend.
package validation

import (
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
)

// ValidateBucketName validates that a bucket name is DNS-compliant.
// Returns an error wrapping ErrInvalidBucketName (or ErrMissingBucket when
// empty) if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucketName", errors.ErrMissingBucket)
	}

	// Bucket names must be between 3 and 63 characters long
	if len(bucket) < 3 || len(bucket) > 63 {
		return invalidBucket(bucket, "bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return invalidBucket(bucket, "bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return invalidBucket(bucket, "bucket name cannot start or end with a hyphen or dot")
	}

	if isIPAddress(bucket) {
		return invalidBucket(bucket, "bucket name cannot be formatted as an IP address")
	}

	if strings.Contains(bucket, "..") || strings.Contains(bucket, "--") {
		return invalidBucket(bucket, "bucket name cannot contain two adjacent periods or hyphens")
	}

	if bucket == "localhost" {
		return invalidBucket(bucket, "bucket name cannot be a reserved word")
	}

	return nil
}

// ValidatePrefix validates a key prefix. An empty prefix selects the whole
// bucket and is valid.
func ValidatePrefix(prefix string) error {
	if len(prefix) > 1024 {
		return errors.NewError("validatePrefix", errors.New(errors.CodeInvalidInput, "prefix cannot exceed 1024 characters")).
			WithKey(prefix)
	}
	for _, r := range prefix {
		if unicode.IsControl(r) {
			return errors.NewError("validatePrefix", errors.New(errors.CodeInvalidInput, "prefix cannot contain control characters")).
				WithKey(prefix)
		}
	}
	return nil
}

func invalidBucket(bucket, message string) error {
	return errors.NewError("validateBucketName", errors.ErrInvalidBucketName).
		WithBucket(bucket).
		WithMessage(message)
}

func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

func isIPAddress(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if len(part) == 0 {
			return true
		}
		num := 0
		for _, char := range part {
			if char < '0' || char > '9' {
				return false
			}
			num = num*10 + int(char-'0')
		}
		if num > 255 {
			return false
		}
	}

	return true
}
