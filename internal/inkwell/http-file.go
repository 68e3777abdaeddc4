// HTTP-обработчики файлов: загрузка формой и по TUS, выдача содержимого.
// Каждая свежая загрузка сразу встает в журнал отложенного удаления и
// живет там, пока не будет закреплена в контенте секции.
package inkwell

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/minio/minio-go/v7"
	tusd "github.com/tus/tusd/v2/pkg/handler"
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/apierrors"
	"github.com/aisa-it/inkwell/internal/inkwell/dao"
	filestorage "github.com/aisa-it/inkwell/internal/inkwell/file-storage"
)

func (s *Services) AddFileServices(g *echo.Group) {
	g.POST("file/", s.uploadFile)
	g.GET("file/:fileId/", s.getFile)
	// Локальное хранилище TUS не поддерживает
	if h := s.storage.GetTUSHandler(cfg, "/api/file/tus/", s.fileUploadValidator, s.filePostUploadHook); h != nil {
		g.Any("file/tus/*", h)
	}
}

type fileUploadRequest struct {
	PageId    string `form:"page_id" validate:"omitempty,uuid"`
	SectionId string `form:"section_id" validate:"omitempty,uuid"`
	FileName  string `form:"-" validate:"fileName"`
}

// assetURL возвращает публичный адрес файла в управляемом пространстве имен.
func assetURL(id uuid.UUID) string {
	return cfg.WebURL.JoinPath("api", "file", id.String()).String()
}

// uploadFile принимает файл формой, кладет его в хранилище и ставит в
// журнал отложенного удаления. Ответ содержит адрес файла для вставки
// в контент.
func (s *Services) uploadFile(c echo.Context) error {
	var req fileUploadRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	req.FileName = file.Filename
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}
	if file.Size == 0 {
		return EErrorDefined(c, apierrors.ErrFileEmpty)
	}
	if file.Size > apierrors.UploadMaxSizeMB*1024*1024 {
		return EErrorDefined(c, apierrors.ErrFileTooLarge)
	}

	asset := dao.FileAsset{
		Id:        dao.GenUUID(),
		PageId:    nullUUIDFromString(req.PageId),
		SectionId: nullUUIDFromString(req.SectionId),
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.uploadAssetForm(tx, file, &asset); err != nil {
			return err
		}
		return s.tracker.TrackUpload(tx, assetURL(asset.Id))
	}); err != nil {
		slog.Error("Upload file", "name", file.Filename, "err", err)
		return EErrorDefined(c, apierrors.ErrFileUploadFailed)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":  asset.Id,
		"url": assetURL(asset.Id),
	})
}

func (s *Services) uploadAssetForm(tx *gorm.DB, file *multipart.FileHeader, dstAsset *dao.FileAsset) error {
	assetSrc, err := file.Open()
	if err != nil {
		return err
	}
	defer assetSrc.Close()

	if dstAsset.Id.IsNil() {
		dstAsset.Id = dao.GenUUID()
	}

	dstAsset.Name = file.Filename
	dstAsset.FileSize = int(file.Size)
	dstAsset.ContentType = file.Header.Get("Content-Type")

	var metadata filestorage.Metadata
	if dstAsset.PageId.Valid {
		metadata.PageId = dstAsset.PageId.UUID.String()
	}
	if dstAsset.SectionId.Valid {
		metadata.SectionId = dstAsset.SectionId.UUID.String()
	}
	if err := s.storage.SaveReader(
		assetSrc,
		file.Size,
		dstAsset.Id,
		dstAsset.ContentType,
		&metadata,
	); err != nil {
		return err
	}

	return tx.Create(&dstAsset).Error
}

// getFile отдает содержимое файла по идентификатору.
func (s *Services) getFile(c echo.Context) error {
	id, err := uuid.FromString(c.Param("fileId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}

	var asset dao.FileAsset
	if err := s.db.Where("id = ?", id).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrAssetNotFound)
		}
		return EError(c, err)
	}

	stats, err := s.storage.GetFileInfo(asset.Id)
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return EErrorDefined(c, apierrors.ErrAssetNotFound)
		}
		return EError(c, err)
	}

	if c.Request().Header.Get("If-None-Match") == stats.ETag {
		return c.NoContent(http.StatusNotModified)
	}

	c.Response().Header().Set("ETag", stats.ETag)
	c.Response().Header().Set("Content-Length", fmt.Sprint(stats.Size))

	r, err := s.storage.LoadReader(asset.Id)
	if err != nil {
		return EError(c, err)
	}
	defer r.Close()

	return c.Stream(http.StatusOK, asset.ContentType, r)
}

func (s *Services) fileUploadValidator(hook tusd.HookEvent) (tusd.HTTPResponse, tusd.FileInfoChanges, error) {
	fileName, fOk := hook.Upload.MetaData["file_name"]
	if !fOk || fileName == "" {
		return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrBadRequest.TusdError()
	}

	if hook.Upload.Size > apierrors.UploadMaxSizeMB*1024*1024 {
		return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrFileTooLarge.TusdError()
	}

	filteredMetadata := tusd.MetaData{
		"file_name": fileName,
	}
	if contentType, ok := hook.Upload.MetaData["content_type"]; ok {
		filteredMetadata["content_type"] = contentType
	}
	if pageId, ok := hook.Upload.MetaData["page_id"]; ok {
		if _, err := uuid.FromString(pageId); err != nil {
			return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrBadRequest.TusdError()
		}
		filteredMetadata["page_id"] = pageId
	}
	if sectionId, ok := hook.Upload.MetaData["section_id"]; ok {
		if _, err := uuid.FromString(sectionId); err != nil {
			return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrBadRequest.TusdError()
		}
		filteredMetadata["section_id"] = sectionId
	}

	return tusd.HTTPResponse{}, tusd.FileInfoChanges{MetaData: filteredMetadata}, nil
}

// filePostUploadHook регистрирует завершенную TUS-загрузку: создает запись
// файла и ставит его в журнал отложенного удаления.
func (s *Services) filePostUploadHook(event tusd.HookEvent) {
	assetId, err := uuid.FromString(strings.Split(event.Upload.ID, "+")[0])
	if err != nil {
		slog.Error("Parse uploaded file id", "id", event.Upload.ID, "err", err)
		return
	}

	contentType := event.Upload.MetaData["content_type"]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	asset := dao.FileAsset{
		Id:          assetId,
		PageId:      nullUUIDFromString(event.Upload.MetaData["page_id"]),
		SectionId:   nullUUIDFromString(event.Upload.MetaData["section_id"]),
		Name:        event.Upload.MetaData["file_name"],
		FileSize:    int(event.Upload.Size),
		ContentType: contentType,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&asset).Error; err != nil {
			return err
		}
		return s.tracker.TrackUpload(tx, assetURL(asset.Id))
	}); err != nil {
		slog.Error("Register TUS upload", "id", assetId, "err", err)
	}
}

func nullUUIDFromString(raw string) uuid.NullUUID {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}
