package service

import (
	"context"
	"io"
	"time"

	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"SignBridge/internal/models"
	"SignBridge/pkg/cache"
	"SignBridge/pkg/util"
)

func newTestDB(t *testing.T, migrate ...interface{}) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := util.NewDatabase("", dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if len(migrate) == 0 {
		migrate = []interface{}{&models.User{}, &models.AuthIdentity{}, &models.AudioFile{}}
	}
	if err := db.AutoMigrate(migrate...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c := cache.NewGoCache(cache.LocalConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute})
	t.Cleanup(func() { c.Close() })
	return c
}

// fakeStore is an in-memory stores.Store with failure injection.
type fakeStore struct {
	objects    map[string][]byte
	writeCalls int
	failWrite  bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.writeCalls++
	if f.failWrite {
		return context.DeadlineExceeded
	}
	data, _ := io.ReadAll(r)
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Read(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	return nil, 0, context.DeadlineExceeded
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.failDelete {
		return context.DeadlineExceeded
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "http://storage.local/audio-recordings/" + key
}
