package editor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

var ErrNoResize = errors.New("no resize gesture in progress")

// Жест ресайза изображения. Промежуточная ширина живет только здесь,
// в дерево попадает одна финальная запись на EndResize.
type resizeGesture struct {
	path       Path
	startX     int
	startWidth int
	currentX   int
}

func (g *resizeGesture) liveWidth() int {
	w := g.startWidth + (g.currentX - g.startX)
	if w < 1 {
		w = 1
	}
	return w
}

// StartResize начинает жест: захватывает стартовую координату указателя и
// текущую отрендеренную ширину изображения в пикселях.
func (s *Session) StartResize(path Path, startX, startWidth int) error {
	n, err := nodeAt(s.doc, path)
	if err != nil {
		return err
	}
	if n.Type != document.TypeImage {
		return fmt.Errorf("resize target is %s, want image", n.Type)
	}
	s.resize = &resizeGesture{
		path:       slices.Clone(path),
		startX:     startX,
		startWidth: startWidth,
		currentX:   startX,
	}
	s.state = StateComposing
	return nil
}

// MoveResize обновляет координату указателя и возвращает живую ширину для
// визуальной обратной связи. Атрибуты ноды при этом не меняются.
func (s *Session) MoveResize(currentX int) (int, error) {
	if s.resize == nil {
		return 0, ErrNoResize
	}
	s.resize.currentX = currentX
	return s.resize.liveWidth(), nil
}

// EndResize завершает жест и фиксирует финальную ширину в атрибутах ноды
// в пикселях.
func (s *Session) EndResize() error {
	g := s.resize
	if g == nil {
		return ErrNoResize
	}
	s.resize = nil
	return s.SetNodeAttr(g.path, "width", g.liveWidth())
}

// CancelResize сбрасывает жест без записи в дерево.
func (s *Session) CancelResize() {
	s.resize = nil
}
