// Бизнес-логика работы с контентом секций: сохранение с выверкой
// медиа-ссылок и каскадное удаление поддеревьев. Держит порядок операций,
// который не могут обеспечить DAO и трекер по отдельности.
package business

import (
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/mediatracker"
)

type Business struct {
	db      *gorm.DB
	tracker *mediatracker.Tracker
}

func NewBL(db *gorm.DB, tracker *mediatracker.Tracker) *Business {
	return &Business{
		db:      db,
		tracker: tracker,
	}
}
