// HTTP-обработчики секций: сохранение и выдача контента, выдача
// HTML-представления и каскадное удаление.
package inkwell

import (
	"errors"
	"io"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/apierrors"
	"github.com/aisa-it/inkwell/internal/inkwell/business"
	"github.com/aisa-it/inkwell/internal/inkwell/document/htmlrender"
)

func (s *Services) AddSectionServices(g *echo.Group) {
	g.GET("pages/:pageId/sections/:sectionId/content/", s.getSectionContent)
	g.PUT("pages/:pageId/sections/:sectionId/content/", s.saveSectionContent)
	g.GET("pages/:pageId/sections/:sectionId/html/", s.getSectionHTML)
	g.DELETE("pages/:pageId/sections/:sectionId/", s.deleteSection)
}

func sectionParams(c echo.Context) (pageId uuid.UUID, sectionId uuid.UUID, err error) {
	pageId, err = uuid.FromString(c.Param("pageId"))
	if err != nil {
		return pageId, sectionId, apierrors.ErrInvalidSectionId
	}
	sectionId, err = uuid.FromString(c.Param("sectionId"))
	if err != nil {
		return pageId, sectionId, apierrors.ErrInvalidSectionId
	}
	return pageId, sectionId, nil
}

// saveSectionContent сохраняет контент секции. Контент проверяется схемой
// документа, медиа-ссылки выверяются в той же транзакции.
func (s *Services) saveSectionContent(c echo.Context) error {
	pageId, sectionId, err := sectionParams(c)
	if err != nil {
		return EError(c, err)
	}

	content, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return EError(c, err)
	}
	if len(content) == 0 {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}

	if err := s.business.SaveSectionContent(pageId, sectionId, content); err != nil {
		if errors.Is(err, business.ErrInvalidContent) {
			er := apierrors.ErrInvalidContent
			er.Err = err.Error()
			return EErrorDefined(c, er)
		}
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// getSectionContent отдает сохраненный контент секции как есть.
func (s *Services) getSectionContent(c echo.Context) error {
	pageId, sectionId, err := sectionParams(c)
	if err != nil {
		return EError(c, err)
	}

	content, err := s.business.GetSectionContent(pageId, sectionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrSectionNotFound)
		}
		return EError(c, err)
	}
	return c.JSONBlob(http.StatusOK, content)
}

// getSectionHTML отдает HTML-представление секции. Рендер работает только
// по сохраненному контенту и не зависит от состояния редактора.
func (s *Services) getSectionHTML(c echo.Context) error {
	pageId, sectionId, err := sectionParams(c)
	if err != nil {
		return EError(c, err)
	}

	content, err := s.business.GetSectionContent(pageId, sectionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrSectionNotFound)
		}
		return EError(c, err)
	}
	return c.HTML(http.StatusOK, htmlrender.RenderSanitized(content))
}

// deleteSection жестко удаляет секцию со всеми потомками и их медиа.
func (s *Services) deleteSection(c echo.Context) error {
	pageId, sectionId, err := sectionParams(c)
	if err != nil {
		return EError(c, err)
	}

	if err := s.business.DeleteSection(pageId, sectionId); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusOK)
}
