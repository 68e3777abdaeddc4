package mediatracker

import (
	"log/slog"
	"maps"
	"slices"

	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/dao"
)

// Сколько URL уходит в одну пачку при жестком удалении.
const deleteChunk = 100

// HardDeleteSections удаляет секции вместе с их медиа: строки вложений со
// своими файлами и файлы, на которые ссылается контент, включая их записи
// в журнале. Окна спасения нет. Отказы хранилища логируются и не прерывают
// реляционное удаление.
func (t *Tracker) HardDeleteSections(tx *gorm.DB, sections []dao.Section) error {
	urlSet := make(map[string]struct{})
	for _, section := range sections {
		for _, ref := range ExtractReferences([]byte(section.Content)) {
			if t.IsManaged(ref) {
				urlSet[ref] = struct{}{}
			}
		}
	}

	// удаление строки секции каскадно сносит ее вложения
	for _, section := range sections {
		if err := tx.Delete(&section).Error; err != nil {
			return err
		}
	}

	urls := slices.Sorted(maps.Keys(urlSet))
	for chunk := range slices.Chunk(urls, deleteChunk) {
		for _, rawURL := range chunk {
			id, ok := AssetIdFromURL(rawURL)
			if !ok {
				continue
			}
			if err := t.storage.Delete(id); err != nil {
				slog.Error("Hard delete blob", "url", rawURL, "err", err)
			}
		}
		if err := dao.RescuePendingUploads(tx, chunk); err != nil {
			return err
		}
	}
	return nil
}
