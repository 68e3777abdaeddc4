package mediatracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/aisa-it/inkwell/internal/inkwell/dao"
)

// Sweep удаляет записи журнала старше окна спасения вместе с их файлами.
// Объем работы ограничен размером пачки. Отказ хранилища оставляет запись
// журнала до следующего запуска, остальные записи обрабатываются дальше.
func (t *Tracker) Sweep(ctx context.Context) (int, error) {
	expired, err := dao.TakeExpiredUploads(t.db, time.Now().Add(-t.grace), t.batch)
	if err != nil {
		return 0, err
	}

	var deleted int
	for _, upload := range expired {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		if id, ok := AssetIdFromURL(upload.Url); ok {
			if err := t.storage.Delete(id); err != nil {
				slog.Error("Sweep blob", "url", upload.Url, "err", err)
				continue
			}
			// строка учета файла уходит вместе с blob
			if err := t.db.Where("id = ?", id).Delete(&dao.FileAsset{}).Error; err != nil {
				return deleted, err
			}
		}

		if err := dao.DeletePendingUpload(t.db, upload.Url); err != nil {
			return deleted, err
		}
		deleted++
		t.swept.Inc()
	}

	if deleted > 0 {
		slog.Info("Pending uploads sweep", "deleted", deleted)
	}
	return deleted, nil
}
