package tokenstore

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket serves a single object over the S3 HTTP protocol and
// records the encryption headers of the last put.
type fakeBucket struct {
	mu       sync.Mutex
	object   []byte
	lastSSE  string
	lastKMS  string
	putCalls int
}

func (b *fakeBucket) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			if b.object == nil {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
				return
			}
			_, _ = w.Write(b.object)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			b.object = body
			b.lastSSE = r.Header.Get("x-amz-server-side-encryption")
			b.lastKMS = r.Header.Get("x-amz-server-side-encryption-aws-kms-key-id")
			b.putCalls++
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func testStore(t *testing.T, bucket *fakeBucket, kmsKeyID string) *Store {
	t.Helper()
	server := httptest.NewServer(bucket.handler())
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(server.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	})

	return &Store{
		s3:        client,
		bucket:    "tokens",
		key:       "globus/ci-tokens.json",
		namespace: "DEFAULT",
		kmsKeyID:  kmsKeyID,
		now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func TestPutAndGet(t *testing.T) {
	bucket := &fakeBucket{}
	store := testStore(t, bucket, "")

	err := store.Put(t.Context(), Token{
		AccessToken:    "at-1",
		RefreshToken:   "rt-1",
		ResourceServer: "transfer.api.globus.org",
		Scope:          "urn:globus:auth:scope:transfer.api.globus.org:all",
	})
	require.NoError(t, err)
	assert.Equal(t, "AES256", bucket.lastSSE)

	tok, err := store.Get(t.Context(), "transfer.api.globus.org")
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "at-1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, "2026-01-02T03:04:05Z", tok.StoredAt)
}

func TestGetMissingObject(t *testing.T) {
	store := testStore(t, &fakeBucket{}, "")

	tok, err := store.Get(t.Context(), "transfer.api.globus.org")

	require.NoError(t, err)
	assert.Nil(t, tok)
}

func TestPutPreservesOtherNamespaces(t *testing.T) {
	bucket := &fakeBucket{}
	existing, _ := json.Marshal(document{
		"ci": {"auth.globus.org": {AccessToken: "other", ResourceServer: "auth.globus.org"}},
	})
	bucket.object = existing
	store := testStore(t, bucket, "")

	err := store.Put(t.Context(), Token{
		AccessToken:    "at-1",
		ResourceServer: "transfer.api.globus.org",
	})
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal(bucket.object, &doc))
	assert.Equal(t, "other", doc["ci"]["auth.globus.org"].AccessToken)
	assert.Equal(t, "at-1", doc["DEFAULT"]["transfer.api.globus.org"].AccessToken)
}

func TestPutWithKMSKey(t *testing.T) {
	bucket := &fakeBucket{}
	store := testStore(t, bucket, "arn:aws:kms:us-east-1:123456789:key/abc")

	err := store.Put(t.Context(), Token{
		AccessToken:    "at-1",
		ResourceServer: "transfer.api.globus.org",
	})

	require.NoError(t, err)
	assert.Equal(t, "aws:kms", bucket.lastSSE)
	assert.Equal(t, "arn:aws:kms:us-east-1:123456789:key/abc", bucket.lastKMS)
}

func TestRemove(t *testing.T) {
	bucket := &fakeBucket{}
	store := testStore(t, bucket, "")
	require.NoError(t, store.Put(t.Context(), Token{
		AccessToken:    "at-1",
		ResourceServer: "transfer.api.globus.org",
	}))

	removed, err := store.Remove(t.Context(), "transfer.api.globus.org")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(t.Context(), "transfer.api.globus.org")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClearNamespace(t *testing.T) {
	bucket := &fakeBucket{}
	store := testStore(t, bucket, "")
	require.NoError(t, store.Put(t.Context(),
		Token{AccessToken: "a", ResourceServer: "auth.globus.org"},
		Token{AccessToken: "b", ResourceServer: "transfer.api.globus.org"},
	))

	require.NoError(t, store.ClearNamespace(t.Context()))

	all, err := store.All(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPutRequiresResourceServer(t *testing.T) {
	store := testStore(t, &fakeBucket{}, "")

	err := store.Put(t.Context(), Token{AccessToken: "at-1"})

	require.Error(t, err)
}
