package service

import (
	"context"
	"errors"
	"path"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fiatimetable/internal/model"
	"fiatimetable/internal/repository"
)

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	rows    map[string]*model.ScheduleDocument
	saves   int
	saveErr error
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{rows: make(map[string]*model.ScheduleDocument)}
}

func (m *mockDocumentRepo) Get(_ context.Context, owner string) (*model.ScheduleDocument, error) {
	row, ok := m.rows[owner]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *mockDocumentRepo) Save(_ context.Context, owner string, payload []byte) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saves++
	row, ok := m.rows[owner]
	if !ok {
		row = &model.ScheduleDocument{OwnerKey: owner}
		m.rows[owner] = row
	}
	row.Payload = datatypes.JSON(append([]byte(nil), payload...))
	row.Revision++
	return row.Revision, nil
}

// ── Mock CloudBackupRepository ──

type mockCloudBackupRepo struct {
	records []model.CloudBackup
}

func (m *mockCloudBackupRepo) Create(_ context.Context, record *model.CloudBackup) error {
	m.records = append(m.records, *record)
	return nil
}

func (m *mockCloudBackupRepo) ListRecent(_ context.Context, owner string, limit int) ([]model.CloudBackup, error) {
	var result []model.CloudBackup
	for _, r := range m.records {
		if r.OwnerKey == owner {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock ObjectStore ──

var errMockTransfer = errors.New("connection refused")

type mockObjectStore struct {
	objects map[string][]byte
	fail    bool
}

func newMockObjectStore() *mockObjectStore {
	return &mockObjectStore{objects: make(map[string][]byte)}
}

func (m *mockObjectStore) ObjectKey(owner string) string {
	return path.Join("fiatimetable", owner+".json")
}

func (m *mockObjectStore) Upload(_ context.Context, key string, data []byte) error {
	if m.fail {
		return errMockTransfer
	}
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	if m.fail {
		return nil, errMockTransfer
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

// ── 测试辅助 ──

const testOwner = "test"

var testZone = time.FixedZone("CST", 8*3600)

// fixedClock 返回固定时间的时钟
func fixedClock(y int, m time.Month, d, h, min int) func() time.Time {
	t := time.Date(y, m, d, h, min, 0, 0, testZone)
	return func() time.Time { return t }
}

func setupTestStore() (*DocumentStore, *mockDocumentRepo, *repository.Repository) {
	docRepo := newMockDocumentRepo()
	repo := &repository.Repository{
		Document:    docRepo,
		CloudBackup: &mockCloudBackupRepo{},
	}
	return NewDocumentStore(repo, testOwner, zap.NewNop()), docRepo, repo
}
