//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fiatimetable/internal/model"
	"fiatimetable/internal/repository"
	"fiatimetable/pkg/redis"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=fia password=fia_password dbname=fia_timetable_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	if err := testDB.AutoMigrate(&model.ScheduleDocument{}, &model.CloudBackup{}); err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func uniqueOwner(t *testing.T) string {
	t.Helper()
	owner := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		testDB.Where("owner_key = ?", owner).Delete(&model.ScheduleDocument{})
		testDB.Where("owner_key = ?", owner).Delete(&model.CloudBackup{})
	})
	return owner
}

// memoryCache 进程内 DocumentCache，语义与 pkg/redis 一致：
// 失效只保留版本号，低于该版本号的回填被忽略
type memoryCache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	beforeSet func()
}

type cacheEntry struct {
	payload  []byte // nil 表示失效标记
	revision int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]cacheEntry)}
}

func (c *memoryCache) GetDocument(_ context.Context, owner string) ([]byte, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[owner]
	if !ok || e.payload == nil {
		return nil, 0, redis.ErrCacheMiss
	}
	return e.payload, e.revision, nil
}

func (c *memoryCache) SetDocument(_ context.Context, owner string, payload []byte, revision int64) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[owner]; ok && e.revision > revision {
		return nil
	}
	c.entries[owner] = cacheEntry{payload: payload, revision: revision}
	return nil
}

func (c *memoryCache) InvalidateDocument(_ context.Context, owner string, revision int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[owner]; ok && e.revision > revision {
		revision = e.revision
	}
	c.entries[owner] = cacheEntry{revision: revision}
	return nil
}

// ═══════════════════════════════════════════════════════════
// Test: DocumentRepository
// ═══════════════════════════════════════════════════════════

func TestDocument_NotFound(t *testing.T) {
	repo := repository.NewRepository(testDB, nil, zap.NewNop())
	_, err := repo.Document.Get(context.Background(), uniqueOwner(t))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestDocument_SaveIncrementsRevision(t *testing.T) {
	repo := repository.NewRepository(testDB, nil, zap.NewNop())
	ctx := context.Background()
	owner := uniqueOwner(t)

	rev1, err := repo.Document.Save(ctx, owner, []byte(`{"theme":"light"}`))
	if err != nil {
		t.Fatalf("首次保存失败: %v", err)
	}
	rev2, err := repo.Document.Save(ctx, owner, []byte(`{"theme":"dark"}`))
	if err != nil {
		t.Fatalf("再次保存失败: %v", err)
	}
	if rev1 != 1 || rev2 != 2 {
		t.Errorf("期望版本号 1、2，实际=%d、%d", rev1, rev2)
	}

	doc, err := repo.Document.Get(ctx, owner)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	// jsonb 会规范化空白，只比较内容
	if doc.Revision != 2 || !strings.Contains(string(doc.Payload), "dark") {
		t.Errorf("读取到的文档不是最后一次写入: rev=%d payload=%s", doc.Revision, doc.Payload)
	}
}

func TestDocument_CacheReadThroughAndInvalidate(t *testing.T) {
	cache := newMemoryCache()
	repo := repository.NewRepository(testDB, cache, zap.NewNop())
	ctx := context.Background()
	owner := uniqueOwner(t)

	if _, err := repo.Document.Save(ctx, owner, []byte(`{"theme":"light"}`)); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if _, err := repo.Document.Get(ctx, owner); err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if _, _, err := cache.GetDocument(ctx, owner); err != nil {
		t.Fatal("读取后应回填缓存")
	}

	if _, err := repo.Document.Save(ctx, owner, []byte(`{"theme":"dark"}`)); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if _, _, err := cache.GetDocument(ctx, owner); !errors.Is(err, redis.ErrCacheMiss) {
		t.Error("保存后缓存应失效")
	}
}

func TestDocument_StaleFillAfterConcurrentSave(t *testing.T) {
	cache := newMemoryCache()
	repo := repository.NewRepository(testDB, cache, zap.NewNop())
	ctx := context.Background()
	owner := uniqueOwner(t)

	if _, err := repo.Document.Save(ctx, owner, []byte(`{"theme":"light"}`)); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	// 读者已从数据库读到版本1，回填缓存之前另一个请求写入了版本2
	cache.beforeSet = func() {
		if _, err := repo.Document.Save(ctx, owner, []byte(`{"theme":"dark"}`)); err != nil {
			t.Errorf("并发保存失败: %v", err)
		}
	}
	stale, err := repo.Document.Get(ctx, owner)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if stale.Revision != 1 {
		t.Fatalf("读者应拿到版本1，实际=%d", stale.Revision)
	}

	if _, _, err := cache.GetDocument(ctx, owner); !errors.Is(err, redis.ErrCacheMiss) {
		t.Error("旧版本不应回填到缓存")
	}
	doc, err := repo.Document.Get(ctx, owner)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if doc.Revision != 2 || !strings.Contains(string(doc.Payload), "dark") {
		t.Errorf("应读到版本2，实际 rev=%d payload=%s", doc.Revision, doc.Payload)
	}
	if _, rev, err := cache.GetDocument(ctx, owner); err != nil || rev != 2 {
		t.Errorf("缓存应回填版本2，实际 rev=%d err=%v", rev, err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: CloudBackupRepository
// ═══════════════════════════════════════════════════════════

func TestCloudBackup_ListRecent(t *testing.T) {
	repo := repository.NewRepository(testDB, nil, zap.NewNop())
	ctx := context.Background()
	owner := uniqueOwner(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		rec := &model.CloudBackup{
			ID:        uuid.NewString(),
			OwnerKey:  owner,
			Direction: model.CloudDirectionUpload,
			ObjectKey: owner + ".json",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CloudBackup.Create(ctx, rec); err != nil {
			t.Fatalf("创建记录失败: %v", err)
		}
	}

	records, err := repo.CloudBackup.ListRecent(ctx, owner, 2)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("期望2条，实际=%d", len(records))
	}
	if !records[0].CreatedAt.After(records[1].CreatedAt) {
		t.Error("记录应按时间倒序")
	}
}
