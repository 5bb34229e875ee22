package minio

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	miniogo "github.com/minio/minio-go/v7"

	"github.com/koustreak/tablescope/internal/errs"
)

// mapError translates an error from a store operation on bucket (and key,
// when the operation targets one object) into a *errs.Error whose message
// names what could not be reached.
func mapError(err error, op, bucket, key string) *errs.Error {
	if err == nil {
		return nil
	}

	where := bucket
	if key != "" {
		where = bucket + "/" + key
	}

	if errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindCancelled, op+" cancelled: "+where, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.ErrKindTimeout, op+" timed out: "+where, err)
	}

	// Download writes to the staging directory; failures there are local.
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(err, fs.ErrPermission) {
			return errs.Wrap(errs.ErrKindPermissionDenied, "cannot write staged file "+pathErr.Path, err)
		}
		return errs.Wrap(errs.ErrKindInvalidInput, "cannot stage "+where+" at "+pathErr.Path, err)
	}

	var resp miniogo.ErrorResponse
	if !errors.As(err, &resp) {
		return errs.Wrap(errs.ErrKindTransport, op+" failed: "+where, err)
	}
	switch resp.Code {
	case "NoSuchBucket":
		return errs.Wrap(errs.ErrKindNotFound, "bucket "+bucket+" does not exist", err)
	case "NoSuchKey", "NoSuchObject":
		return errs.Wrap(errs.ErrKindNotFound, "object "+key+" not found in bucket "+bucket, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errs.Wrap(errs.ErrKindPermissionDenied, op+" denied for "+where+"; check store.access_key and store.secret_key", err)
	case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError":
		return errs.Wrap(errs.ErrKindInvalidInput, op+" rejected: invalid name "+where, err)
	case "RequestTimeout", "SlowDown":
		return errs.Wrap(errs.ErrKindTimeout, op+" throttled by the store: "+where, err)
	}

	// Stat and HEAD replies carry no body, so only the status is known.
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errs.Wrap(errs.ErrKindNotFound, where+" not found", err)
	case http.StatusForbidden, http.StatusUnauthorized:
		return errs.Wrap(errs.ErrKindPermissionDenied, op+" denied for "+where, err)
	case http.StatusServiceUnavailable:
		return errs.Wrap(errs.ErrKindTimeout, op+" failed: store unavailable", err)
	}

	return errs.Wrap(errs.ErrKindTransport, op+" failed: "+where, err)
}
