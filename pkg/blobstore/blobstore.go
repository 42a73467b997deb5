// Package blobstore wraps the remote image host behind a small interface.
// The HTTP implementation follows the hosted-image-API shape: signed form
// uploads, deletion by remote id, download by the stored URL. Calls carry a
// bounded timeout; a network failure is reported to callers, who translate
// it to an upstream (502) error.
package blobstore

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FileRef identifies an uploaded blob: the public download path and the
// remote id needed to delete it later.
type FileRef struct {
	Path     string `json:"path"`
	RemoteID string `json:"remote_id"`
}

// Store is the blob-store collaborator consumed by the services.
type Store interface {
	Upload(ctx context.Context, data []byte, key string) (*FileRef, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string, ref *FileRef) error
}

// HTTPStore talks to a hosted image API over HTTP.
type HTTPStore struct {
	uploadURL  string
	destroyURL string
	apiKey     string
	apiSecret  string
	client     *http.Client
}

// Config holds the image host endpoints and credentials.
type Config struct {
	UploadURL  string
	DestroyURL string
	APIKey     string
	APISecret  string
}

// NewHTTPStore builds a store with a bounded per-request timeout.
func NewHTTPStore(cfg Config) *HTTPStore {
	return &HTTPStore{
		uploadURL:  cfg.UploadURL,
		destroyURL: cfg.DestroyURL,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// sign produces the request signature the image host expects: sha1 of the
// key-sorted params plus the API secret. url.Values.Encode sorts by key,
// which is exactly the ordering the host signs.
func (s *HTTPStore) sign(params url.Values) string {
	sum := sha1.Sum([]byte(params.Encode() + s.apiSecret))
	return fmt.Sprintf("%x", sum)
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

// Upload pushes data under key and returns the resulting file reference.
func (s *HTTPStore) Upload(ctx context.Context, data []byte, key string) (*FileRef, error) {
	mime := http.DetectContentType(data)
	payload := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

	signed := url.Values{}
	signed.Add("public_id", key)
	signed.Add("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	signature := s.sign(signed)

	form := url.Values{}
	form.Add("file", payload)
	form.Add("api_key", s.apiKey)
	form.Add("public_id", key)
	form.Add("timestamp", signed.Get("timestamp"))
	form.Add("signature", signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("blobstore: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blobstore: upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("blobstore: upload %s: status %d: %s", key, resp.StatusCode, body)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("blobstore: decode upload response: %w", err)
	}
	return &FileRef{Path: parsed.SecureURL, RemoteID: parsed.PublicID}, nil
}

// Download fetches the blob stored at key (the public path of its FileRef).
func (s *HTTPStore) Download(ctx context.Context, key string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key, nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: build download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blobstore: download %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blobstore: download %s: status %d", key, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Delete removes the blob identified by ref from the remote host.
func (s *HTTPStore) Delete(ctx context.Context, key string, ref *FileRef) error {
	signed := url.Values{}
	signed.Add("public_id", ref.RemoteID)
	signed.Add("timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	signature := s.sign(signed)

	form := url.Values{}
	form.Add("api_key", s.apiKey)
	form.Add("public_id", ref.RemoteID)
	form.Add("timestamp", signed.Get("timestamp"))
	form.Add("signature", signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.destroyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("blobstore: build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("blobstore: delete %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("blobstore: delete %s: status %d", key, resp.StatusCode)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	blobs map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, data []byte, key string) (*FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := make([]byte, len(data))
	copy(owned, data)
	s.blobs[key] = owned
	return &FileRef{Path: key, RemoteID: key}, nil
}

func (s *MemoryStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blobstore: %s not found", key)
	}
	return data, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string, _ *FileRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
