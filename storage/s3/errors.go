package s3

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	lserrors "github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
)

// translateError maps AWS SDK errors onto logsync sentinels so callers can
// use errors.Is without knowing the backend. The original error stays in the
// chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return errors.Join(lserrors.ErrObjectNotFound, err)
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return errors.Join(lserrors.ErrObjectNotFound, err)
	}
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return errors.Join(lserrors.ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return errors.Join(lserrors.ErrObjectNotFound, err)
		case "NoSuchBucket":
			return errors.Join(lserrors.ErrBucketNotFound, err)
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errors.Join(lserrors.ErrAccessDenied, err)
		}
	}

	return err
}
