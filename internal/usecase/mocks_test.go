package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
)

// memKeyRepository はテスト用のインメモリ鍵ストア。
type memKeyRepository struct {
	mu          sync.Mutex
	records     map[string]*domain.KeyRecord
	rotations   []*domain.KeyRotation
	existsCalls int
	findErr     error
}

func newMemKeyRepository() *memKeyRepository {
	return &memKeyRepository{records: make(map[string]*domain.KeyRecord)}
}

func recordKey(name string, keyType domain.KeyType) string {
	return string(keyType) + "/" + name
}

func (r *memKeyRepository) Create(ctx context.Context, rec *domain.KeyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := recordKey(rec.Name, rec.Type)
	if _, ok := r.records[k]; ok {
		return domain.ErrKeyAlreadyExists
	}
	cp := *rec
	cp.CreatedAt = time.Now()
	r.records[k] = &cp
	return nil
}

func (r *memKeyRepository) Upsert(ctx context.Context, rec *domain.KeyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[recordKey(rec.Name, rec.Type)] = &cp
	return nil
}

func (r *memKeyRepository) FindByNameAndType(ctx context.Context, name string, keyType domain.KeyType) (*domain.KeyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec, ok := r.records[recordKey(name, keyType)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memKeyRepository) ExistsByNameAndType(ctx context.Context, name string, keyType domain.KeyType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existsCalls++
	_, ok := r.records[recordKey(name, keyType)]
	return ok, nil
}

func (r *memKeyRepository) FindAll(ctx context.Context) ([]*domain.KeyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.records))
	for k := range r.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*domain.KeyRecord, 0, len(keys))
	for _, k := range keys {
		cp := *r.records[k]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memKeyRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]*domain.KeyRecord)
	r.rotations = nil
	return nil
}

func (r *memKeyRepository) RecordRotation(ctx context.Context, rotation *domain.KeyRotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rotations = append(r.rotations, rotation)
	return nil
}

func (r *memKeyRepository) FindAllRotations(ctx context.Context) ([]*domain.KeyRotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.KeyRotation(nil), r.rotations...), nil
}

// fakeKMS は接頭辞を付けるだけのラッパー。
type fakeKMS struct{}

var wrapPrefix = []byte("wrapped:")

func (fakeKMS) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return append(bytes.Clone(wrapPrefix), plaintext...), nil
}

func (fakeKMS) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if !bytes.HasPrefix(ciphertext, wrapPrefix) {
		return nil, errors.New("not wrapped")
	}
	return bytes.Clone(ciphertext[len(wrapPrefix):]), nil
}

func newTestKeyManager() (*ServiceKeyManager, *memKeyRepository) {
	repo := newMemKeyRepository()
	return NewServiceKeyManager(repo, fakeKMS{}, "key-ring-1"), repo
}

// countingKeyManager は共通鍵の生成回数を数える。
type countingKeyManager struct {
	KeyManager
	mu            sync.Mutex
	generateCalls int
}

func (m *countingKeyManager) GenerateNewCurrentSymmetricKey(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.generateCalls++
	m.mu.Unlock()
	return m.KeyManager.GenerateNewCurrentSymmetricKey(ctx)
}

type mockCall struct {
	Document  string
	Variables map[string]any
}

// mockAPIClient はドキュメントごとに用意したレスポンスを返す。
type mockAPIClient struct {
	mu        sync.Mutex
	responses map[string]any
	errs      map[string]error
	calls     []mockCall
}

func newMockAPIClient() *mockAPIClient {
	return &mockAPIClient{responses: make(map[string]any), errs: make(map[string]error)}
}

func (m *mockAPIClient) do(ctx context.Context, document string, variables map[string]any, out any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mockCall{Document: document, Variables: variables})
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", gql.ErrTransport, err)
	}
	if err, ok := m.errs[document]; ok {
		return err
	}
	resp, ok := m.responses[document]
	if !ok {
		return fmt.Errorf("unexpected document: %s", strings.TrimSpace(document))
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (m *mockAPIClient) Query(ctx context.Context, document string, variables map[string]any, out any) error {
	return m.do(ctx, document, variables, out)
}

func (m *mockAPIClient) Mutate(ctx context.Context, document string, variables map[string]any, out any) error {
	return m.do(ctx, document, variables, out)
}

func (m *mockAPIClient) callCount(document string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Document == document {
			n++
		}
	}
	return n
}

func (m *mockAPIClient) lastInput(document string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Document == document {
			return m.calls[i].Variables["input"]
		}
	}
	return nil
}

type storedObject struct {
	data     []byte
	metadata map[string]string
	modified time.Time
}

// memObjectStore はテスト用のインメモリバケット。
type memObjectStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]storedObject
	deleted []string
}

func newMemObjectStore(bucket string) *memObjectStore {
	return &memObjectStore{bucket: bucket, objects: make(map[string]storedObject)}
}

func (s *memObjectStore) Bucket() string { return s.bucket }
func (s *memObjectStore) Region() string { return "us-east-1" }

func (s *memObjectStore) Upload(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{data: bytes.Clone(data), metadata: metadata, modified: time.Now()}
	return nil
}

func (s *memObjectStore) Download(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, nil, domain.ErrObjectNotFound
	}
	return bytes.Clone(o.data), &domain.ObjectInfo{Key: key, Size: int64(len(o.data)), LastModified: o.modified, Metadata: o.metadata}, nil
}

func (s *memObjectStore) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ObjectInfo
	for k, o := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, domain.ObjectInfo{Key: k, Size: int64(len(o.data)), LastModified: o.modified, Metadata: o.metadata})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memObjectStore) GetObjectMetadata(ctx context.Context, key string) (*domain.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return &domain.ObjectInfo{Key: key, Size: int64(len(o.data)), LastModified: o.modified, Metadata: o.metadata}, nil
}

func (s *memObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return domain.ErrObjectNotFound
	}
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type staticIdentity struct {
	owner      string
	identityID string
}

func (i staticIdentity) Owner(ctx context.Context) (string, error)      { return i.owner, nil }
func (i staticIdentity) IdentityID(ctx context.Context) (string, error) { return i.identityID, nil }

// jsonArchiver はテスト用のアーカイバ。
type jsonArchiver struct{}

func (jsonArchiver) Marshal(archive *domain.KeyArchive) ([]byte, error) {
	return json.Marshal(archive)
}

func (jsonArchiver) Unmarshal(data []byte) (*domain.KeyArchive, error) {
	var a domain.KeyArchive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidKeyArchive, err)
	}
	return &a, nil
}
