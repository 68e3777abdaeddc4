package dao

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Section хранит контент одной секции страницы: сериализованное дерево
// документа как есть, без нормализации. Секции образуют дерево через
// ParentId в рамках страницы.
type Section struct {
	PageId    uuid.UUID     `json:"page_id" gorm:"primaryKey;type:uuid"`
	SectionId uuid.UUID     `json:"section_id" gorm:"primaryKey;type:uuid"`
	ParentId  uuid.NullUUID `json:"parent_id" gorm:"type:uuid;index"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Возвращает имя таблицы для данного типа структуры.
func (Section) TableName() string { return "sections" }

// GetSection возвращает секцию по составному ключу.
func GetSection(tx *gorm.DB, pageId, sectionId uuid.UUID) (*Section, error) {
	var section Section
	if err := tx.Where("page_id = ? AND section_id = ?", pageId, sectionId).First(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// SaveContent записывает контент секции, создавая строку при ее отсутствии.
func (s *Section) SaveContent(tx *gorm.DB, content string) error {
	s.Content = content
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "page_id"}, {Name: "section_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(s).Error
}

// GetSectionSubtree возвращает секцию и всех ее потомков по parent_id,
// поуровневым обходом в ширину.
func GetSectionSubtree(tx *gorm.DB, pageId, rootId uuid.UUID) ([]Section, error) {
	var root Section
	if err := tx.Where("page_id = ? AND section_id = ?", pageId, rootId).First(&root).Error; err != nil {
		return nil, err
	}

	result := []Section{root}
	frontier := []uuid.UUID{rootId}
	for len(frontier) > 0 {
		var children []Section
		if err := tx.Where("page_id = ? AND parent_id IN ?", pageId, frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, child := range children {
			result = append(result, child)
			frontier = append(frontier, child.SectionId)
		}
	}
	return result, nil
}

// BeforeDelete удаляет вложения секции перед удалением самой строки.
// Blob каждого вложения удаляется его собственным хуком.
func (s *Section) BeforeDelete(tx *gorm.DB) error {
	var assets []FileAsset
	if err := tx.Where("page_id = ? AND section_id = ?", s.PageId, s.SectionId).Find(&assets).Error; err != nil {
		return err
	}
	for _, asset := range assets {
		if err := tx.Delete(&asset).Error; err != nil {
			return err
		}
	}
	return nil
}
