package mediatracker

import (
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/dao"
)

// Reconcile сверяет медиа-ссылки старого и нового контента при сохранении.
// Управляемые ссылки, пропавшие из контента, встают в журнал отложенного
// удаления (повтор обновляет created_at), а все ссылки нового контента
// снимаются с удаления. Немедленного удаления файлов нет: загрузка могла
// завершиться раньше объемлющего сохранения, и жесткое удаление гоняло бы
// наперегонки с еще не записанной ссылкой.
//
// Вызывается в той же транзакции, что и запись контента.
func (t *Tracker) Reconcile(tx *gorm.DB, oldContent, newContent []byte) error {
	oldRefs := ExtractReferences(oldContent)
	newRefs := ExtractReferences(newContent)

	current := make(map[string]struct{}, len(newRefs))
	for _, ref := range newRefs {
		current[ref] = struct{}{}
	}

	queued := make(map[string]struct{})
	for _, ref := range oldRefs {
		if _, ok := current[ref]; ok {
			continue
		}
		if _, ok := queued[ref]; ok {
			continue
		}
		if !t.IsManaged(ref) {
			continue
		}
		if err := dao.UpsertPendingUpload(tx, ref); err != nil {
			return err
		}
		queued[ref] = struct{}{}
	}

	return dao.RescuePendingUploads(tx, newRefs)
}
