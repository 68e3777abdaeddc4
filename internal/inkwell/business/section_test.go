package business

import (
	"errors"
	"io"
	"net/url"
	"testing"

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
	"github.com/aisa-it/inkwell/internal/inkwell/mediatracker"
)

type nullStorage struct{}

func (nullStorage) GetTUSHandler(cfg *config.Config, baseUrl string,
	uploadValidator func(hook tusd.HookEvent) (tusd.HTTPResponse, tusd.FileInfoChanges, error),
	postUploadHook func(event tusd.HookEvent)) echo.HandlerFunc {
	return nil
}
func (nullStorage) Save([]byte, uuid.UUID, string, *filestorage.Metadata) error { return nil }
func (nullStorage) SaveReader(io.Reader, int64, uuid.UUID, string, *filestorage.Metadata) error {
	return nil
}
func (nullStorage) Load(uuid.UUID) ([]byte, error)                      { return nil, nil }
func (nullStorage) LoadReader(uuid.UUID) (io.ReadCloser, error)         { return nil, nil }
func (nullStorage) Delete(uuid.UUID) error                              { return nil }
func (nullStorage) Exist(uuid.UUID) (bool, error)                       { return false, nil }
func (nullStorage) ListRoot(func(filestorage.FileInfo) error) error     { return nil }
func (nullStorage) GetFileInfo(uuid.UUID) (*filestorage.FileInfo, error) { return nil, nil }

func setupBL(t *testing.T) (*Business, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&dao.Section{}, &dao.FileAsset{}, &dao.PendingUpload{}))

	dao.FileStorage = nullStorage{}
	webURL, _ := url.Parse("https://cms.example.com")
	return NewBL(db, mediatracker.NewTracker(db, nullStorage{}, webURL)), db
}

func sectionContent(t *testing.T, srcs ...string) []byte {
	var blocks []document.Node
	blocks = append(blocks, document.NewParagraph(document.NewText("text")))
	for _, src := range srcs {
		blocks = append(blocks, document.NewImage(src))
	}
	data, err := document.Serialize(document.NewDocument(blocks...))
	require.NoError(t, err)
	return data
}

func TestSaveSectionContent(t *testing.T) {
	bl, db := setupBL(t)
	pageId, sectionId := dao.GenUUID(), dao.GenUUID()

	// первое сохранение создает секцию
	first := sectionContent(t, "/api/file/a", "/api/file/b")
	require.NoError(t, bl.SaveSectionContent(pageId, sectionId, first))

	got, err := bl.GetSectionContent(pageId, sectionId)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(got))

	// второе сохранение убирает одну ссылку: она встает в журнал
	second := sectionContent(t, "/api/file/a")
	require.NoError(t, bl.SaveSectionContent(pageId, sectionId, second))

	var pending []dao.PendingUpload
	require.NoError(t, db.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, "/api/file/b", pending[0].Url)

	// третье возвращает ссылку обратно: журнал пустеет
	require.NoError(t, bl.SaveSectionContent(pageId, sectionId, first))

	var count int64
	db.Model(&dao.PendingUpload{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestSaveSectionContentRejectsInvalid(t *testing.T) {
	bl, db := setupBL(t)
	pageId, sectionId := dao.GenUUID(), dao.GenUUID()

	tests := []struct {
		name    string
		content []byte
	}{
		{name: "not json", content: []byte(`{oops`)},
		{name: "not a doc", content: []byte(`{"type":"paragraph"}`)},
		{name: "schema violation", content: []byte(`{"type":"doc","content":[{"type":"heading","attrs":{"level":9}}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bl.SaveSectionContent(pageId, sectionId, tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidContent))
		})
	}

	var count int64
	db.Model(&dao.Section{}).Count(&count)
	assert.EqualValues(t, 0, count, "rejected content must not be persisted")
}

func TestDeleteSectionCascades(t *testing.T) {
	bl, db := setupBL(t)
	pageId := dao.GenUUID()
	rootId, childId := dao.GenUUID(), dao.GenUUID()

	require.NoError(t, bl.SaveSectionContent(pageId, rootId, sectionContent(t, "/api/file/root-img")))
	require.NoError(t, bl.SaveSectionContent(pageId, childId, sectionContent(t)))
	require.NoError(t, db.Model(&dao.Section{}).
		Where("page_id = ? AND section_id = ?", pageId, childId).
		Update("parent_id", rootId).Error)

	require.NoError(t, bl.DeleteSection(pageId, rootId))

	var sections, pending int64
	db.Model(&dao.Section{}).Count(&sections)
	db.Model(&dao.PendingUpload{}).Count(&pending)
	assert.EqualValues(t, 0, sections)
	assert.EqualValues(t, 0, pending)
}
