package minio

import (
	"context"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/filestore"
)

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	_, err := New(context.Background(), &filestore.Config{Endpoint: "localhost:9000"})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = New(context.Background(), &filestore.Config{})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestToObjectInfo(t *testing.T) {
	now := time.Now()
	info := toObjectInfo(miniogo.ObjectInfo{
		Key:          "imports/item.csv",
		Size:         42,
		ContentType:  "text/csv",
		ETag:         "abc",
		LastModified: now,
	})
	assert.Equal(t, filestore.ObjectInfo{
		Key:          "imports/item.csv",
		Size:         42,
		ContentType:  "text/csv",
		ETag:         "abc",
		LastModified: now,
	}, info)

	assert.True(t, toObjectInfo(miniogo.ObjectInfo{Key: "imports/"}).IsDir)
}
