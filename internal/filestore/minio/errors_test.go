package minio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tablescope/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    errs.ErrKind
		wantMsg string
	}{
		{"cancelled", fmt.Errorf("list: %w", context.Canceled), errs.ErrKindCancelled, "download cancelled: imports/csv/item.csv"},
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout, "download timed out"},
		{"no such key", miniogo.ErrorResponse{StatusCode: http.StatusNotFound, Code: "NoSuchKey"}, errs.ErrKindNotFound, "object csv/item.csv not found in bucket imports"},
		{"no such bucket", miniogo.ErrorResponse{StatusCode: http.StatusNotFound, Code: "NoSuchBucket"}, errs.ErrKindNotFound, "bucket imports does not exist"},
		{"bare 404", miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, errs.ErrKindNotFound, "imports/csv/item.csv not found"},
		{"access denied", miniogo.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied"}, errs.ErrKindPermissionDenied, "store.secret_key"},
		{"bad signature", miniogo.ErrorResponse{Code: "SignatureDoesNotMatch"}, errs.ErrKindPermissionDenied, "download denied"},
		{"bare 403", miniogo.ErrorResponse{StatusCode: http.StatusForbidden}, errs.ErrKindPermissionDenied, "download denied"},
		{"slow down", miniogo.ErrorResponse{Code: "SlowDown"}, errs.ErrKindTimeout, "throttled"},
		{"unavailable", miniogo.ErrorResponse{StatusCode: http.StatusServiceUnavailable}, errs.ErrKindTimeout, "store unavailable"},
		{"staging not writable", &fs.PathError{Op: "open", Path: "/stage/item.csv.part.minio", Err: fs.ErrPermission}, errs.ErrKindPermissionDenied, "cannot write staged file /stage/item.csv.part.minio"},
		{"other", errors.New("connection reset"), errs.ErrKindTransport, "download failed: imports/csv/item.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "download", "imports", "csv/item.csv")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, errs.KindOf(got))
			assert.Contains(t, got.Message, tt.wantMsg)
			assert.Equal(t, tt.err, got.Cause)
		})
	}

	assert.Nil(t, mapError(nil, "stat", "imports", "k"))
}

func TestMapError_BucketOnly(t *testing.T) {
	got := mapError(errors.New("dial tcp: refused"), "ping", "imports", "")
	assert.True(t, errs.IsTransport(got))
	assert.Equal(t, "ping failed: imports", got.Message)
}
