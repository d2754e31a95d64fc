package services

import (
	"sync"

	"github.com/google/uuid"

	"loto/internal/metrics"
)

type blob struct {
	data        []byte
	contentType string
}

// BlobStore keeps binary payloads in memory under opaque ids until they are revoked.
// It is what lets a rendered page point at a ticket image: /qr/<id>.
type BlobStore struct {
	mu      sync.RWMutex
	blobs   map[string]*blob
	revoked int
	metrics *metrics.Metrics
}

func NewBlobStore(m *metrics.Metrics) *BlobStore {
	return &BlobStore{
		blobs:   make(map[string]*blob),
		metrics: m,
	}
}

// Create registers data and returns the single handle that owns it.
func (s *BlobStore) Create(data []byte, contentType string) *ImageHandle {
	id := uuid.NewString()

	s.mu.Lock()
	s.blobs[id] = &blob{data: data, contentType: contentType}
	live := len(s.blobs)
	s.mu.Unlock()

	s.metrics.SetLiveImages(live)
	return &ImageHandle{id: id, store: s}
}

// Get returns the payload for id, or false once it has been revoked.
func (s *BlobStore) Get(id string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[id]
	if !ok {
		return nil, "", false
	}
	return b.data, b.contentType, true
}

// Len is the number of live blobs.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Revoked is the number of blobs released so far.
func (s *BlobStore) Revoked() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revoked
}

func (s *BlobStore) revoke(id string) {
	s.mu.Lock()
	if _, ok := s.blobs[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.blobs, id)
	s.revoked++
	live := len(s.blobs)
	s.mu.Unlock()

	s.metrics.SetLiveImages(live)
}

// ImageHandle is a revocable reference to a ticket image held by a BlobStore.
type ImageHandle struct {
	id    string
	store *BlobStore
	once  sync.Once
}

func (h *ImageHandle) ID() string {
	return h.id
}

// URL is the path under which the image is served.
func (h *ImageHandle) URL() string {
	return "/qr/" + h.id
}

// Release revokes the image. Calling it again does nothing.
func (h *ImageHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.store.revoke(h.id)
	})
}
