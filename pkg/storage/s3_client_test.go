package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryS3Client(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryS3Client()

	location, err := client.Upload(ctx, "badges", "a.json", strings.NewReader(`{"name":"badge"}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "memory://badges/a.json", location)

	rc, err := client.Download(ctx, "badges", "a.json")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"badge"}`, string(data))

	require.NoError(t, client.Delete(ctx, "badges", "a.json"))
	_, err = client.Download(ctx, "badges", "a.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
