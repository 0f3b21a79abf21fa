// Package blob issues time-limited upload and download URLs for the external
// file host. The host verifies the JWT carried in the "token" query parameter;
// this service never handles file bytes.
package blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carecompliance/internal/documents/models"
	dErrors "carecompliance/pkg/domain-errors"
)

const (
	opUpload   = "upload"
	opDownload = "download"

	defaultUploadTTL = 15 * time.Minute
)

type grantClaims struct {
	Op          string `json:"op"`
	ContentType string `json:"ct,omitempty"`
	MaxSize     int64  `json:"max,omitempty"`
	FileName    string `json:"fn,omitempty"`
	jwt.RegisteredClaims
}

// Signer mints signed URLs against baseURL.
type Signer struct {
	baseURL     *url.URL
	key         []byte
	downloadTTL time.Duration
	uploadTTL   time.Duration
}

// NewSigner validates baseURL and key.
func NewSigner(baseURL, signingKey string, downloadTTL time.Duration) (*Signer, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("blob: invalid base url %q", baseURL)
	}
	if signingKey == "" {
		return nil, fmt.Errorf("blob: signing key is required")
	}
	if downloadTTL <= 0 {
		downloadTTL = defaultUploadTTL
	}
	return &Signer{baseURL: u, key: []byte(signingKey), downloadTTL: downloadTTL, uploadTTL: defaultUploadTTL}, nil
}

// PutUpload reserves a storage id and returns the URL the client uploads to.
// The grant pins content type and maximum size so the host can enforce them.
func (s *Signer) PutUpload(_ context.Context, contentType string, maxSize int64, now time.Time) (*models.UploadHandle, error) {
	storageID := uuid.NewString()
	expiresAt := now.Add(s.uploadTTL)
	signed, err := s.sign(grantClaims{
		Op:          opUpload,
		ContentType: contentType,
		MaxSize:     maxSize,
	}, storageID, now, expiresAt)
	if err != nil {
		return nil, err
	}
	return &models.UploadHandle{
		StorageID: storageID,
		UploadURL: s.urlFor(storageID, signed),
		ExpiresAt: expiresAt,
	}, nil
}

// DownloadURL returns a link valid for the configured download TTL.
func (s *Signer) DownloadURL(_ context.Context, ref models.FileRef, now time.Time) (*models.DownloadLink, error) {
	if strings.TrimSpace(ref.StorageID) == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "file not found")
	}
	expiresAt := now.Add(s.downloadTTL)
	signed, err := s.sign(grantClaims{Op: opDownload, FileName: ref.FileName}, ref.StorageID, now, expiresAt)
	if err != nil {
		return nil, err
	}
	return &models.DownloadLink{URL: s.urlFor(ref.StorageID, signed), ExpiresAt: expiresAt}, nil
}

// Verify parses a grant, as the file host does. Used by tests and the dev host.
func (s *Signer) Verify(token string, now time.Time) (storageID, op string, err error) {
	claims := &grantClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid file grant")
	}
	return claims.Subject, claims.Op, nil
}

func (s *Signer) sign(claims grantClaims, storageID string, now, expiresAt time.Time) (string, error) {
	claims.Subject = storageID
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign file grant")
	}
	return signed, nil
}

func (s *Signer) urlFor(storageID, token string) string {
	u := *s.baseURL
	u.Path = u.Path + "/" + url.PathEscape(storageID)
	u.RawQuery = url.Values{"token": []string{token}}.Encode()
	return u.String()
}
