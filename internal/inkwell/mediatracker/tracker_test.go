package mediatracker

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tusd "github.com/tus/tusd/v2/pkg/handler"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aisa-it/inkwell/internal/inkwell/config"
	"github.com/aisa-it/inkwell/internal/inkwell/dao"
	"github.com/aisa-it/inkwell/internal/inkwell/document"
	filestorage "github.com/aisa-it/inkwell/internal/inkwell/file-storage"
)

type fakeStorage struct {
	deleted    []uuid.UUID
	failDelete bool
}

func (f *fakeStorage) GetTUSHandler(cfg *config.Config, baseUrl string,
	uploadValidator func(hook tusd.HookEvent) (tusd.HTTPResponse, tusd.FileInfoChanges, error),
	postUploadHook func(event tusd.HookEvent)) echo.HandlerFunc {
	return nil
}
func (f *fakeStorage) Save(data []byte, name uuid.UUID, contentType string, metadata *filestorage.Metadata) error {
	return nil
}
func (f *fakeStorage) SaveReader(reader io.Reader, fileSize int64, name uuid.UUID, contentType string, metadata *filestorage.Metadata) error {
	return nil
}
func (f *fakeStorage) Load(name uuid.UUID) ([]byte, error)              { return nil, nil }
func (f *fakeStorage) LoadReader(name uuid.UUID) (io.ReadCloser, error) { return nil, nil }
func (f *fakeStorage) Delete(name uuid.UUID) error {
	if f.failDelete {
		return errors.New("bucket unavailable")
	}
	f.deleted = append(f.deleted, name)
	return nil
}
func (f *fakeStorage) Exist(name uuid.UUID) (bool, error)                 { return true, nil }
func (f *fakeStorage) ListRoot(fn func(filestorage.FileInfo) error) error { return nil }
func (f *fakeStorage) GetFileInfo(name uuid.UUID) (*filestorage.FileInfo, error) {
	return nil, nil
}

func newTestTracker(t *testing.T, opts ...TrackerOption) (*Tracker, *fakeStorage, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dao.Section{}, &dao.FileAsset{}, &dao.PendingUpload{}))

	storage := &fakeStorage{}
	dao.FileStorage = storage

	webURL, _ := url.Parse("https://cms.example.com")
	return NewTracker(db, storage, webURL, opts...), storage, db
}

// contentWithImages собирает контент документа с image-нодами на переданных src.
func contentWithImages(srcs ...string) []byte {
	var blocks []document.Node
	for _, src := range srcs {
		blocks = append(blocks, document.NewImage(src))
	}
	data, _ := document.Serialize(document.NewDocument(blocks...))
	return data
}

func TestExtractReferences(t *testing.T) {
	doc := document.NewDocument(
		document.NewParagraph(document.NewText("hi")),
		document.NewImage("/api/file/a"),
		document.NewAttachment("/api/file/b", "b.pdf", "1.0 KB", "pdf"),
		document.NewIframe("https://drive.google.com/file/d/X/preview"),
		document.NewYoutube("https://youtu.be/dQw4w9WgXcQ"),
		document.NewImage("/api/file/a"),
	)
	data, err := document.Serialize(doc)
	require.NoError(t, err)

	refs := ExtractReferences(data)
	// youtube не медиа-ссылка трекера, дубликаты сохраняются
	assert.Equal(t, []string{
		"/api/file/a",
		"/api/file/b",
		"https://drive.google.com/file/d/X/preview",
		"/api/file/a",
	}, refs)
}

func TestExtractReferencesNested(t *testing.T) {
	columns := document.NewColumns(2)
	columns.Content[0].Content = []document.Node{document.NewImage("/api/file/deep")}
	data, err := document.Serialize(document.NewDocument(columns))
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/file/deep"}, ExtractReferences(data))
}

func TestExtractReferencesMalformed(t *testing.T) {
	assert.Empty(t, ExtractReferences([]byte(`{broken`)))
	assert.Empty(t, ExtractReferences([]byte(`{"type":"paragraph"}`)))
	assert.Empty(t, ExtractReferences(nil))
}

func TestIsManaged(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	tests := []struct {
		url  string
		want bool
	}{
		{url: "/api/file/abc", want: true},
		{url: "https://cms.example.com/api/file/abc", want: true},
		{url: "https://other.example.com/api/file/abc", want: false},
		{url: "https://cms.example.com/static/logo.png", want: false},
		{url: "https://drive.google.com/file/d/X/preview", want: false},
		{url: "://bad", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tracker.IsManaged(tt.url), tt.url)
	}
}

func TestReconcileQueuesRemovedManagedRefs(t *testing.T) {
	tracker, _, db := newTestTracker(t)

	oldContent := contentWithImages("/api/file/gone", "https://other.example.com/ext.png", "/api/file/kept")
	newContent := contentWithImages("/api/file/kept")

	require.NoError(t, tracker.Reconcile(db, oldContent, newContent))

	var pending []dao.PendingUpload
	require.NoError(t, db.Find(&pending).Error)
	require.Len(t, pending, 1, "only removed managed refs are queued")
	assert.Equal(t, "/api/file/gone", pending[0].Url)
}

func TestReconcileRescuesReappearedRef(t *testing.T) {
	tracker, _, db := newTestTracker(t)

	require.NoError(t, dao.UpsertPendingUpload(db, "/api/file/back"))

	// ссылка вернулась в контент до истечения окна: запись снимается
	require.NoError(t, tracker.Reconcile(db, nil, contentWithImages("/api/file/back")))

	var count int64
	db.Model(&dao.PendingUpload{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestReconcileIdempotent(t *testing.T) {
	tracker, _, db := newTestTracker(t)

	oldContent := contentWithImages("/api/file/gone", "/api/file/gone")
	require.NoError(t, tracker.Reconcile(db, oldContent, nil))
	require.NoError(t, tracker.Reconcile(db, oldContent, nil))

	var count int64
	db.Model(&dao.PendingUpload{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSweep(t *testing.T) {
	tracker, storage, db := newTestTracker(t)

	assetId := dao.GenUUID()
	require.NoError(t, db.Create(&dao.FileAsset{Id: assetId, Name: "a.png"}).Error)

	rows := []dao.PendingUpload{
		{Url: "/api/file/" + assetId.String(), CreatedAt: time.Now().Add(-25 * time.Hour)},
		{Url: "/api/file/fresh", CreatedAt: time.Now().Add(-time.Hour)},
	}
	require.NoError(t, db.Create(&rows).Error)

	deleted, err := tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	require.Len(t, storage.deleted, 1)
	assert.Equal(t, assetId, storage.deleted[0])

	var assetCount, pendingCount int64
	db.Model(&dao.FileAsset{}).Count(&assetCount)
	db.Model(&dao.PendingUpload{}).Count(&pendingCount)
	assert.EqualValues(t, 0, assetCount, "asset row goes with the blob")
	assert.EqualValues(t, 1, pendingCount, "fresh row survives the sweep")
}

func TestSweepBounded(t *testing.T) {
	tracker, _, db := newTestTracker(t, WithSweepBatch(1))

	rows := []dao.PendingUpload{
		{Url: "/api/file/one", CreatedAt: time.Now().Add(-30 * time.Hour)},
		{Url: "/api/file/two", CreatedAt: time.Now().Add(-25 * time.Hour)},
	}
	require.NoError(t, db.Create(&rows).Error)

	deleted, err := tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, err = tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

// Отказ хранилища не срывает уборку: запись остается до следующего запуска.
func TestSweepStorageFailure(t *testing.T) {
	tracker, storage, db := newTestTracker(t)
	storage.failDelete = true

	assetId := dao.GenUUID()
	require.NoError(t, db.Create(&dao.PendingUpload{
		Url:       "/api/file/" + assetId.String(),
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}).Error)

	deleted, err := tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	var count int64
	db.Model(&dao.PendingUpload{}).Count(&count)
	assert.EqualValues(t, 1, count)

	storage.failDelete = false
	deleted, err = tracker.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestTrackUpload(t *testing.T) {
	tracker, _, db := newTestTracker(t)

	require.NoError(t, tracker.TrackUpload(db, "/api/file/new"))
	require.NoError(t, tracker.TrackUpload(db, "https://other.example.com/x.png"))

	var pending []dao.PendingUpload
	require.NoError(t, db.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, "/api/file/new", pending[0].Url)
}

func TestHardDeleteSections(t *testing.T) {
	tracker, storage, db := newTestTracker(t)
	pageId := dao.GenUUID()

	embeddedId := dao.GenUUID()
	attachedId := dao.GenUUID()

	root := dao.Section{PageId: pageId, SectionId: dao.GenUUID()}
	root.Content = string(contentWithImages("/api/file/" + embeddedId.String()))
	child := dao.Section{
		PageId:    pageId,
		SectionId: dao.GenUUID(),
		ParentId:  uuid.NullUUID{UUID: root.SectionId, Valid: true},
	}
	require.NoError(t, db.Create(&[]dao.Section{root, child}).Error)
	require.NoError(t, db.Create(&dao.FileAsset{
		Id:        attachedId,
		PageId:    uuid.NullUUID{UUID: pageId, Valid: true},
		SectionId: uuid.NullUUID{UUID: child.SectionId, Valid: true},
		Name:      "a.pdf",
	}).Error)
	// встроенная ссылка еще и в журнале: жесткое удаление чистит и его
	require.NoError(t, dao.UpsertPendingUpload(db, "/api/file/"+embeddedId.String()))

	subtree, err := dao.GetSectionSubtree(db, pageId, root.SectionId)
	require.NoError(t, err)
	require.Len(t, subtree, 2)

	require.NoError(t, tracker.HardDeleteSections(db, subtree))

	var sectionCount, assetCount, pendingCount int64
	db.Model(&dao.Section{}).Count(&sectionCount)
	db.Model(&dao.FileAsset{}).Count(&assetCount)
	db.Model(&dao.PendingUpload{}).Count(&pendingCount)
	assert.EqualValues(t, 0, sectionCount)
	assert.EqualValues(t, 0, assetCount)
	assert.EqualValues(t, 0, pendingCount)

	assert.Contains(t, storage.deleted, embeddedId)
	assert.Contains(t, storage.deleted, attachedId)
}
