package business

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/dao"
	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

var ErrInvalidContent = errors.New("content is not a valid document")

// SaveSectionContent записывает контент секции и выверяет медиа-ссылки
// одной транзакцией: пропавшие файлы встают в журнал отложенного удаления,
// вернувшиеся снимаются с него. Контент проверяется парсером и схемой до
// записи.
func (b *Business) SaveSectionContent(pageId, sectionId uuid.UUID, content []byte) error {
	doc, err := document.ParseBytes(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := document.DefaultSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	return b.db.Transaction(func(tx *gorm.DB) error {
		var oldContent []byte
		section, err := dao.GetSection(tx, pageId, sectionId)
		switch {
		case err == nil:
			oldContent = []byte(section.Content)
		case errors.Is(err, gorm.ErrRecordNotFound):
			section = &dao.Section{PageId: pageId, SectionId: sectionId}
		default:
			return err
		}

		if err := section.SaveContent(tx, string(content)); err != nil {
			return err
		}
		return b.tracker.Reconcile(tx, oldContent, content)
	})
}

// GetSectionContent возвращает сохраненный контент секции как есть.
func (b *Business) GetSectionContent(pageId, sectionId uuid.UUID) ([]byte, error) {
	section, err := dao.GetSection(b.db, pageId, sectionId)
	if err != nil {
		return nil, err
	}
	return []byte(section.Content), nil
}

// DeleteSection жестко удаляет секцию со всеми потомками и их медиа.
func (b *Business) DeleteSection(pageId, sectionId uuid.UUID) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		subtree, err := dao.GetSectionSubtree(tx, pageId, sectionId)
		if err != nil {
			return err
		}
		return b.tracker.HardDeleteSections(tx, subtree)
	})
}
