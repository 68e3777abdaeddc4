// Пакет editor реализует сессию редактирования документа: живое дерево в
// памяти, обработчики ввода (drop, paste, tab), палитру slash-команд и жест
// ресайза изображений. Каждая структурная мутация валидируется схемой до
// применения: отклоненная мутация не меняет дерево, наружу невалидное
// состояние не утекает.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// State - состояние сессии редактирования.
type State int

const (
	StateIdle State = iota
	StateComposing
	StateSaved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateSaved:
		return "saved"
	}
	return "unknown"
}

var (
	ErrBadPath  = errors.New("path does not resolve to a node")
	ErrNoUpload = errors.New("session has no upload callback")
)

// Path адресует ноду индексами детей от корня документа.
type Path []int

// UploadFunc загружает файл в blob-хранилище и возвращает его URL.
type UploadFunc func(ctx context.Context, name string, contentType string, r io.Reader, size int64) (string, error)

// SaveHook получает сериализованный контент при сохранении сессии.
type SaveHook func(content []byte) error

// Session владеет живым документом. Автосохранения нет: каждая мутация
// синхронно меняет состояние в памяти, момент сериализации выбирает
// вызывающая сторона через Save.
type Session struct {
	doc    *document.Document
	schema *document.Schema
	state  State
	upload UploadFunc
	onSave SaveHook
	resize *resizeGesture
	log    *slog.Logger
}

type SessionOption func(*Session)

func WithUpload(f UploadFunc) SessionOption {
	return func(s *Session) { s.upload = f }
}

func WithSaveHook(f SaveHook) SessionOption {
	return func(s *Session) { s.onSave = f }
}

func WithLogger(log *slog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

// NewSession открывает сессию над документом. Nil-документ заменяется
// пустым с одним параграфом. Невалидный документ сессию не открывает.
func NewSession(doc *document.Document, opts ...SessionOption) (*Session, error) {
	if doc == nil {
		doc = document.NewDocument(document.NewParagraph())
	}
	s := &Session{
		doc:    doc,
		schema: document.DefaultSchema,
		state:  StateIdle,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Document возвращает живое дерево сессии. Мутировать его в обход сессии
// нельзя, для изменений есть методы мутаций.
func (s *Session) Document() *document.Document {
	return s.doc
}

func (s *Session) State() State {
	return s.state
}

// Save сериализует документ, вызывает хук сохранения и переводит сессию
// в Saved. Дерево к этому моменту валидно по построению.
func (s *Session) Save() ([]byte, error) {
	data, err := document.Serialize(s.doc)
	if err != nil {
		return nil, err
	}
	if s.onSave != nil {
		if err := s.onSave(data); err != nil {
			return nil, err
		}
	}
	s.state = StateSaved
	return data, nil
}

// mutate применяет мутацию к черновой копии дерева. В сессию копия попадает
// только после успешной валидации, иначе дерево остается прежним.
func (s *Session) mutate(fn func(d *document.Document) error) error {
	draft := s.doc.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	if err := s.schema.Validate(draft); err != nil {
		return fmt.Errorf("mutation rejected: %w", err)
	}
	s.doc = draft
	s.state = StateComposing
	return nil
}

// InsertAt вставляет ноды перед позицией, заданной последним сегментом пути.
// Последний сегмент может равняться числу детей родителя (вставка в конец).
func (s *Session) InsertAt(path Path, nodes ...document.Node) error {
	return s.mutate(func(d *document.Document) error {
		siblings, idx, err := containerAt(d, path, true)
		if err != nil {
			return err
		}
		*siblings = slices.Insert(*siblings, idx, nodes...)
		return nil
	})
}

// Delete удаляет ноду по пути вместе со всем поддеревом.
func (s *Session) Delete(path Path) error {
	return s.mutate(func(d *document.Document) error {
		siblings, idx, err := containerAt(d, path, false)
		if err != nil {
			return err
		}
		*siblings = slices.Delete(*siblings, idx, idx+1)
		return nil
	})
}

// Replace заменяет ноду по пути.
func (s *Session) Replace(path Path, n document.Node) error {
	return s.mutate(func(d *document.Document) error {
		target, err := nodeAt(d, path)
		if err != nil {
			return err
		}
		*target = n
		return nil
	})
}

// SetNodeAttr обновляет атрибут ноды по пути.
func (s *Session) SetNodeAttr(path Path, key string, value any) error {
	return s.mutate(func(d *document.Document) error {
		target, err := nodeAt(d, path)
		if err != nil {
			return err
		}
		target.SetAttr(key, value)
		return nil
	})
}

func nodeAt(d *document.Document, path Path) (*document.Node, error) {
	if len(path) == 0 {
		return nil, ErrBadPath
	}
	siblings := d.Content
	var n *document.Node
	for depth, idx := range path {
		if idx < 0 || idx >= len(siblings) {
			return nil, fmt.Errorf("%w: index %d at depth %d", ErrBadPath, idx, depth)
		}
		n = &siblings[idx]
		siblings = n.Content
	}
	return n, nil
}

// containerAt возвращает слайс детей родителя последнего сегмента пути и сам
// индекс. При forInsert индекс может указывать за последнего ребенка.
func containerAt(d *document.Document, path Path, forInsert bool) (*[]document.Node, int, error) {
	if len(path) == 0 {
		return nil, 0, ErrBadPath
	}

	siblings := &d.Content
	if len(path) > 1 {
		parent, err := nodeAt(d, path[:len(path)-1])
		if err != nil {
			return nil, 0, err
		}
		siblings = &parent.Content
	}

	idx := path[len(path)-1]
	limit := len(*siblings)
	if forInsert {
		limit++
	}
	if idx < 0 || idx >= limit {
		return nil, 0, fmt.Errorf("%w: index %d out of range", ErrBadPath, idx)
	}
	return siblings, idx, nil
}
