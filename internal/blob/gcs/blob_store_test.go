package gcs

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"

	"github.com/sportsgraph/roster-crawler/internal/crawler"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "snapshots"})
	require.Error(t, err)

	client := &storage.Client{}
	_, err = New(client, Config{})
	require.Error(t, err)

	archive, err := New(client, Config{Bucket: "snapshots"})
	require.NoError(t, err)

	var _ crawler.BlobStore = archive
}

func TestPutObjectRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	archive, err := New(&storage.Client{}, Config{Bucket: "snapshots"})
	require.NoError(t, err)

	_, err = archive.PutObject(context.Background(), "  ", "", strings.NewReader("<html></html>"))
	require.Error(t, err)
}
