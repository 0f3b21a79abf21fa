package blob

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/internal/documents/models"
	dErrors "carecompliance/pkg/domain-errors"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner("https://files.example.test/v1/", "test-key", 10*time.Minute)
	require.NoError(t, err)
	return s
}

func tokenOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestNewSigner(t *testing.T) {
	_, err := NewSigner("not a url", "k", time.Minute)
	require.Error(t, err)
	_, err = NewSigner("https://files.example.test", "", time.Minute)
	require.Error(t, err)
}

func TestSigner_PutUpload(t *testing.T) {
	s := newTestSigner(t)
	now := time.Now()

	h, err := s.PutUpload(context.Background(), models.ContentTypePDF, 1024, now)
	require.NoError(t, err)
	assert.NotEmpty(t, h.StorageID)
	assert.True(t, strings.HasPrefix(h.UploadURL, "https://files.example.test/v1/"+h.StorageID+"?token="))
	assert.Equal(t, now.Add(defaultUploadTTL), h.ExpiresAt)

	id, op, err := s.Verify(tokenOf(t, h.UploadURL), now)
	require.NoError(t, err)
	assert.Equal(t, h.StorageID, id)
	assert.Equal(t, opUpload, op)
}

func TestSigner_DownloadURL(t *testing.T) {
	s := newTestSigner(t)
	now := time.Now()
	ref := models.FileRef{StorageID: "blob-1", FileName: "plan.pdf"}

	link, err := s.DownloadURL(context.Background(), ref, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), link.ExpiresAt)

	t.Run("valid until expiry", func(t *testing.T) {
		id, op, err := s.Verify(tokenOf(t, link.URL), now.Add(9*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, "blob-1", id)
		assert.Equal(t, opDownload, op)
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		_, _, err := s.Verify(tokenOf(t, link.URL), now.Add(11*time.Minute))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("missing storage id", func(t *testing.T) {
		_, err := s.DownloadURL(context.Background(), models.FileRef{}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
