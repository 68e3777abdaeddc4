package dao

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingUpload - строка журнала незакрепленных загрузок: URL файла, не
// подтвержденного ни одним сохраненным документом. Запись создается при
// загрузке файла и при пропадании ссылки из контента, снимается при
// появлении ссылки в любом сохранении. Просроченные записи удаляет уборка
// вместе с файлами.
type PendingUpload struct {
	Url       string    `json:"url" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// Возвращает имя таблицы для данного типа структуры.
func (PendingUpload) TableName() string { return "pending_uploads" }

// UpsertPendingUpload ставит URL в очередь на отложенное удаление.
// Повторный вызов обновляет created_at: окно спасения отсчитывается заново.
func UpsertPendingUpload(tx *gorm.DB, url string) error {
	now := time.Now()
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"created_at": now}),
	}).Create(&PendingUpload{Url: url, CreatedAt: now}).Error
}

// RescuePendingUploads снимает URL с очереди удаления. URL без записей в
// журнале не ошибка: операция идемпотентна.
func RescuePendingUploads(tx *gorm.DB, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	return tx.Where("url IN ?", urls).Delete(&PendingUpload{}).Error
}

// TakeExpiredUploads возвращает записи старше before, от старых к новым,
// не больше limit за вызов.
func TakeExpiredUploads(tx *gorm.DB, before time.Time, limit int) ([]PendingUpload, error) {
	var uploads []PendingUpload
	err := tx.Where("created_at < ?", before).
		Order("created_at").
		Limit(limit).
		Find(&uploads).Error
	return uploads, err
}

// DeletePendingUpload удаляет одну запись журнала.
func DeletePendingUpload(tx *gorm.DB, url string) error {
	return tx.Where("url = ?", url).Delete(&PendingUpload{}).Error
}
