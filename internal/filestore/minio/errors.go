package minio

import (
	"context"
	"errors"
	"net/http"

	"github.com/koustreak/schemadiff/internal/errs"
	miniogo "github.com/minio/minio-go/v7"
)

// mapError translates a MinIO SDK error into a *errs.Error. S3 error codes
// take precedence over the HTTP status.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var resp miniogo.ErrorResponse
	if errors.As(err, &resp) {
		if kind, ok := classifyCode(resp.Code); ok {
			return errs.Wrap(kind, msg, err)
		}
		if kind, ok := classifyStatus(resp.StatusCode); ok {
			return errs.Wrap(kind, msg, err)
		}
		return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
	}

	// Network and TLS failures
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifyCode(code string) (errs.ErrKind, bool) {
	switch code {
	case "NoSuchBucket", "NoSuchKey", "NoSuchUpload":
		return errs.ErrKindNotFound, true
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errs.ErrKindPermissionDenied, true
	case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError", "EntityTooLarge":
		return errs.ErrKindInvalidInput, true
	case "RequestTimeout", "SlowDown":
		return errs.ErrKindTimeout, true
	}
	return errs.ErrKindUnknown, false
}

func classifyStatus(status int) (errs.ErrKind, bool) {
	switch status {
	case http.StatusNotFound:
		return errs.ErrKindNotFound, true
	case http.StatusForbidden, http.StatusUnauthorized:
		return errs.ErrKindPermissionDenied, true
	case http.StatusBadRequest:
		return errs.ErrKindInvalidInput, true
	}
	return errs.ErrKindUnknown, false
}
