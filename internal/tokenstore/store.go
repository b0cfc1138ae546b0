// Package tokenstore persists Globus OAuth tokens in S3 so that CI
// pipelines can reuse refresh tokens without an interactive login.
package tokenstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/m1yag1/globusctl/internal/config"
)

// Token is one stored token entry, keyed by the resource server it was
// issued for. The JSON layout matches the token file produced by the
// Globus SDK token storage adapters, so both sides can share a bucket.
type Token struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	ExpiresAt      int64  `json:"expires_at_seconds,omitempty"`
	ResourceServer string `json:"resource_server"`
	Scope          string `json:"scope,omitempty"`
	TokenType      string `json:"token_type"`
	StoredAt       string `json:"stored_at"`
	ClientID       string `json:"client_id,omitempty"`
}

// document is the bucket object layout: namespace -> resource server
// -> token.
type document map[string]map[string]Token

// Store reads and writes a token document in a single S3 object.
// Objects are always written with server side encryption, AES256 by
// default or KMS when a key ID is configured.
type Store struct {
	s3        *s3.Client
	bucket    string
	key       string
	namespace string
	kmsKeyID  string

	now func() time.Time
}

// New builds a Store from the token_store configuration. AWS
// credentials come from the default chain (environment, shared config,
// IAM role).
func New(ctx context.Context, cfg config.TokenStoreConfig) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "DEFAULT"
	}

	return &Store{
		s3:        s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		key:       cfg.Key,
		namespace: namespace,
		kmsKeyID:  cfg.KMSKeyID,
		now:       time.Now,
	}, nil
}

// Put stores tokens in the configured namespace, one entry per
// resource server. Existing entries for other resource servers and
// other namespaces are preserved.
func (s *Store) Put(ctx context.Context, tokens ...Token) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if doc[s.namespace] == nil {
		doc[s.namespace] = make(map[string]Token)
	}

	for _, tok := range tokens {
		if tok.ResourceServer == "" {
			return errors.New("token is missing a resource server")
		}
		if tok.TokenType == "" {
			tok.TokenType = "Bearer"
		}
		tok.StoredAt = s.now().UTC().Format(time.RFC3339)
		doc[s.namespace][tok.ResourceServer] = tok
	}
	return s.save(ctx, doc)
}

// Get returns the token stored for a resource server, or nil if none
// is stored.
func (s *Store) Get(ctx context.Context, resourceServer string) (*Token, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	tok, ok := doc[s.namespace][resourceServer]
	if !ok {
		return nil, nil
	}
	return &tok, nil
}

// All returns every token in the configured namespace.
func (s *Store) All(ctx context.Context) (map[string]Token, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc[s.namespace], nil
}

// Remove deletes the token for a resource server. It reports whether
// an entry was actually removed.
func (s *Store) Remove(ctx context.Context, resourceServer string) (bool, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := doc[s.namespace][resourceServer]; !ok {
		return false, nil
	}
	delete(doc[s.namespace], resourceServer)
	return true, s.save(ctx, doc)
}

// ClearNamespace drops every token in the configured namespace,
// leaving other namespaces untouched.
func (s *Store) ClearNamespace(ctx context.Context) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := doc[s.namespace]; !ok {
		return nil
	}
	delete(doc, s.namespace)
	return s.save(ctx, doc)
}

func (s *Store) load(ctx context.Context) (document, error) {
	result, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return document{}, nil
		}
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", s.key, s.bucket, err)
	}
	defer result.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	var doc document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse token document: %w", err)
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token document: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = types.ServerSideEncryptionAes256
	}

	if _, err := s.s3.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", s.key, s.bucket, err)
	}
	return nil
}

// isNoSuchKey checks if the error means the token object does not
// exist yet.
func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	// that may not return the exact SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
