package minio

import (
	"errors"

	"github.com/minio/minio-go/v7"

	lserrors "github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
)

// translateError maps MinIO error responses onto logsync sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return errors.Join(lserrors.ErrObjectNotFound, err)
	case "NoSuchBucket":
		return errors.Join(lserrors.ErrBucketNotFound, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errors.Join(lserrors.ErrAccessDenied, err)
	}
	return err
}
