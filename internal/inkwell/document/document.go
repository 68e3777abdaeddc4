// Пакет document определяет wire-модель структурированного документа редактора:
// дерево нод с атрибутами и marks, сериализуемое в JSON и обратно без потерь.
// Это общая модель для редактируемой поверхности, read-only рендерера и
// трекера медиа-ссылок.
//
// Основные возможности:
//   - Парсинг и сериализация JSON-контента документа (round-trip без потерь).
//   - Универсальная структура ноды с map-атрибутами для поддержки всех типов.
//   - Безопасные аксессоры атрибутов (string/int/bool).
//   - Единый обход дерева (Walk) для всех потребителей.
package document

import (
	"encoding/json"
	"errors"
	"io"
)

// RootType - тип корневой ноды документа. Зафиксирован в персистентном
// формате, менять нельзя.
const RootType = "doc"

var ErrNotDocument = errors.New("content root is not a doc node")

// Document представляет корневой документ.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content,omitempty"`
}

// Node представляет узел в дереве документа.
// Используется универсальная структура с map для атрибутов,
// чтобы неизвестные типы нод сохранялись без потерь.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

// Mark представляет форматирование текста (bold, italic, link и т.д.).
// Порядок marks в слайсе значим: первый mark оборачивает текст ближе всего.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Parse парсит JSON контент документа из io.Reader.
// Возвращает ErrNotDocument, если корневая нода не "doc".
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Type != RootType {
		return nil, ErrNotDocument
	}
	return &doc, nil
}

// ParseBytes парсит JSON контент документа из байтового среза.
func ParseBytes(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Type != RootType {
		return nil, ErrNotDocument
	}
	return &doc, nil
}

// Serialize сериализует документ в JSON. Результат пригоден для
// персистентного хранения: Parse(Serialize(d)) структурно равен d.
func Serialize(doc *Document) ([]byte, error) {
	if doc.Type == "" {
		doc.Type = RootType
	}
	return json.Marshal(doc)
}

// NewDocument создает документ с переданными блоками.
// Пустой контент остается nil: omitempty не сериализует его, и дерево
// после round-trip остается структурно равным построенному.
func NewDocument(content ...Node) *Document {
	return &Document{Type: RootType, Content: content}
}

// Clone возвращает глубокую копию документа.
func (d *Document) Clone() *Document {
	return &Document{Type: d.Type, Content: cloneNodes(d.Content)}
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	res := make([]Node, len(nodes))
	for i, n := range nodes {
		res[i] = Node{
			Type:    n.Type,
			Attrs:   cloneAttrs(n.Attrs),
			Content: cloneNodes(n.Content),
			Text:    n.Text,
		}
		if n.Marks != nil {
			res[i].Marks = make([]Mark, len(n.Marks))
			for j, m := range n.Marks {
				res[i].Marks[j] = Mark{Type: m.Type, Attrs: cloneAttrs(m.Attrs)}
			}
		}
	}
	return res
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	res := make(map[string]any, len(attrs))
	for k, v := range attrs {
		// colwidth хранится как []any
		if arr, ok := v.([]any); ok {
			cp := make([]any, len(arr))
			copy(cp, arr)
			v = cp
		}
		res[k] = v
	}
	return res
}

// Walk обходит дерево документа в глубину. Callback вызывается для каждой
// ноды; возврат true прекращает спуск в детей этой ноды.
func (d *Document) Walk(f func(n *Node) bool) {
	for i := range d.Content {
		walkNode(&d.Content[i], f)
	}
}

func walkNode(n *Node, f func(n *Node) bool) {
	if f(n) {
		return
	}
	for i := range n.Content {
		walkNode(&n.Content[i], f)
	}
}

// TextContent собирает весь текст ноды и ее потомков. Для codeBlock это
// дословное содержимое блока.
func (n *Node) TextContent() string {
	var text string
	walkNode(n, func(child *Node) bool {
		text += child.Text
		return false
	})
	return text
}
