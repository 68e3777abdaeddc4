package dao

import (
	"log/slog"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// FileAsset - файл в blob-хранилище, привязанный к секции. Ключ объекта в
// хранилище совпадает с Id.
type FileAsset struct {
	Id        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`

	PageId    uuid.NullUUID `json:"page,omitempty" gorm:"type:uuid"`
	SectionId uuid.NullUUID `json:"section,omitempty" gorm:"type:uuid;index"`

	Name        string `json:"name" gorm:"index"`
	FileSize    int    `json:"size"`
	ContentType string `json:"content_type"`
}

// Возвращает имя таблицы для данного типа структуры.
func (FileAsset) TableName() string { return "file_assets" }

// BeforeDelete удаляет blob из хранилища перед удалением записи. Ошибка
// хранилища логируется и не прерывает удаление: строка уходит, файл
// подбирается следующей уборкой по ListRoot.
func (asset *FileAsset) BeforeDelete(tx *gorm.DB) error {
	exist, err := FileStorage.Exist(asset.Id)
	if err != nil {
		slog.Error("Check asset blob", "asset", asset.Id, "err", err)
		return nil
	}

	if exist {
		if err := FileStorage.Delete(asset.Id); err != nil {
			slog.Error("Delete asset blob", "asset", asset.Id, "err", err)
		}
	}
	return nil
}
