// Package e2e drives a running server over HTTP with godog scenarios.
//
// The server must be started with the demo seed and a signing key the suite
// knows:
//
//	SEED_DEMO=true AUTH_JWT_SIGNING_KEY=e2e-key go run ./cmd/server
//	E2E_BASE_URL=http://localhost:8080 E2E_JWT_KEY=e2e-key go test -tags e2e ./e2e
//
// Set E2E_JWT_ISSUER when the server runs with AUTH_JWT_ISSUER.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jwttoken "carecompliance/internal/jwt_token"
)

// TestContext holds one scenario's HTTP state.
type TestContext struct {
	baseURL string
	tokens  *jwttoken.JWTService
	client  *http.Client

	actorID    string
	lastStatus int
	lastHeader http.Header
	lastBody   []byte
	saved      map[string]string
}

func NewTestContext(baseURL, signingKey, issuer string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  jwttoken.NewJWTService(signingKey, issuer),
		client:  &http.Client{Timeout: 10 * time.Second},
		saved:   map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.actorID = ""
	tc.lastStatus = 0
	tc.lastHeader = nil
	tc.lastBody = nil
	tc.saved = map[string]string{}
}

func (tc *TestContext) SetActor(actorID string) {
	tc.actorID = actorID
}

func (tc *TestContext) ClearActor() {
	tc.actorID = ""
}

func (tc *TestContext) GET(ctx context.Context, path string) error {
	return tc.Do(ctx, http.MethodGet, path, nil)
}

func (tc *TestContext) POST(ctx context.Context, path string, body any) error {
	return tc.Do(ctx, http.MethodPost, path, body)
}

// Do sends one request, signed as the current actor when one is set.
func (tc *TestContext) Do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.actorID != "" {
		token, err := tc.tokens.GenerateAccessToken(tc.actorID, 5*time.Minute)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	return nil
}

func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) LastBody() []byte {
	return tc.lastBody
}

func (tc *TestContext) LastHeader(name string) string {
	if tc.lastHeader == nil {
		return ""
	}
	return tc.lastHeader.Get(name)
}

// ResponseField reads a top-level field of the last JSON body.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) Save(key, value string) {
	tc.saved[key] = value
}

func (tc *TestContext) Saved(key string) string {
	return tc.saved[key]
}
