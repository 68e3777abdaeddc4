// Описание закрытого словаря типов нод и marks и правил их вложенности.
// Реестр один на оба пути интерпретации (редактор и рендерер), чтобы их
// семантика не расходилась. Строка типа ноды - стабильный wire-идентификатор:
// после появления персистентного контента с этим типом менять ее нельзя.
package document

import (
	"fmt"
	"slices"
	"strings"
)

// Типы нод словаря. Wire-идентификаторы, заморожены.
const (
	TypeParagraph        = "paragraph"
	TypeHeading          = "heading"
	TypeText             = "text"
	TypeHardBreak        = "hardBreak"
	TypeBulletList       = "bulletList"
	TypeOrderedList      = "orderedList"
	TypeListItem         = "listItem"
	TypeBlockquote       = "blockquote"
	TypeTable            = "table"
	TypeTableRow         = "tableRow"
	TypeTableCell        = "tableCell"
	TypeTableHeader      = "tableHeader"
	TypeCodeBlock        = "codeBlock"
	TypeImage            = "image"
	TypeAttachment       = "attachment"
	TypeYoutube          = "youtube"
	TypeIframe           = "iframe"
	TypeCallout          = "callout"
	TypeColumnsContainer = "columnsContainer"
	TypeColumn           = "column"
)

// Типы marks.
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkStrike    = "strike"
	MarkUnderline = "underline"
	MarkCode      = "code"
	MarkLink      = "link"
)

// Группы нод для контентных выражений.
const (
	GroupBlock  = "block"
	GroupInline = "inline"
)

// CalloutTypes - порядок перечисления значим: клик по иконке callout
// циклически переключает тип в этом порядке.
var CalloutTypes = []string{"info", "warning", "error", "success"}

// AttributeSpec описывает атрибут ноды: значение по умолчанию и допустимые
// значения (для enum-атрибутов).
type AttributeSpec struct {
	Default  any
	Required bool
	Enum     []string
	Min, Max int // для числовых атрибутов; оба нуля - без ограничений
}

// NodeSpec описывает тип ноды: группу, атрибуты и контентное выражение.
// Контентное выражение - "name", "name+" или "name*", где name - группа
// или конкретный тип. Атомарные ноды детей не имеют.
type NodeSpec struct {
	Type    string
	Group   string
	Atomic  bool
	Content string
	Attrs   map[string]AttributeSpec
}

// MarkSpec описывает тип mark.
type MarkSpec struct {
	Type  string
	Attrs map[string]AttributeSpec
}

// SchemaViolation - ошибка структурной валидации. Никогда не должна
// возникать на контенте, созданном через редактор: его API не дает собрать
// невалидное дерево. Рендерер подобный контент не валидирует, а пропускает.
type SchemaViolation struct {
	Path   string
	Reason string
}

func (v *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", v.Path, v.Reason)
}

// Schema - реестр типов нод и marks.
type Schema struct {
	nodes map[string]NodeSpec
	marks map[string]MarkSpec
}

func NewSchema(nodes []NodeSpec, marks []MarkSpec) *Schema {
	s := &Schema{
		nodes: make(map[string]NodeSpec, len(nodes)),
		marks: make(map[string]MarkSpec, len(marks)),
	}
	for _, n := range nodes {
		s.nodes[n.Type] = n
	}
	for _, m := range marks {
		s.marks[m.Type] = m
	}
	return s
}

// NodeSpec возвращает спецификацию типа ноды.
func (s *Schema) NodeSpec(t string) (NodeSpec, bool) {
	spec, ok := s.nodes[t]
	return spec, ok
}

// Atomic возвращает true для атомарных нод (image, attachment, youtube,
// iframe): у них нет редактируемого контента, адресуются только атрибутами.
func (s *Schema) Atomic(t string) bool {
	spec, ok := s.nodes[t]
	return ok && spec.Atomic
}

// Validate проверяет документ на соответствие схеме.
func (s *Schema) Validate(doc *Document) error {
	if doc.Type != RootType {
		return &SchemaViolation{Path: "/", Reason: "root node must be doc"}
	}
	for i := range doc.Content {
		if err := s.validateNode(&doc.Content[i], fmt.Sprintf("/%d", i), GroupBlock); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNode проверяет отдельную ноду как блочную.
func (s *Schema) ValidateNode(n *Node) error {
	return s.validateNode(n, "/", GroupBlock)
}

func (s *Schema) validateNode(n *Node, path string, context string) error {
	spec, ok := s.nodes[n.Type]
	if !ok {
		return &SchemaViolation{Path: path, Reason: "unknown node type " + n.Type}
	}

	if context != "" && !s.matches(n.Type, context) {
		return &SchemaViolation{Path: path, Reason: fmt.Sprintf("%s not allowed in %s context", n.Type, context)}
	}

	if err := s.validateAttrs(n, spec, path); err != nil {
		return err
	}

	if spec.Atomic {
		if len(n.Content) > 0 {
			return &SchemaViolation{Path: path, Reason: n.Type + " is atomic and cannot have children"}
		}
		return nil
	}

	if n.Type == TypeText {
		for _, mark := range n.Marks {
			if _, ok := s.marks[mark.Type]; !ok {
				return &SchemaViolation{Path: path, Reason: "unknown mark type " + mark.Type}
			}
			if mark.Type == MarkLink && mark.MarkAttrString("href") == "" {
				return &SchemaViolation{Path: path, Reason: "link mark requires href"}
			}
		}
		return nil
	}

	name, minCount, maxCount := parseContentExpr(spec.Content)
	if len(n.Content) < minCount {
		return &SchemaViolation{Path: path, Reason: fmt.Sprintf("%s requires at least %d %s child(ren)", n.Type, minCount, name)}
	}
	if maxCount > 0 && len(n.Content) > maxCount {
		return &SchemaViolation{Path: path, Reason: fmt.Sprintf("%s allows at most %d %s child(ren)", n.Type, maxCount, name)}
	}

	for i := range n.Content {
		if err := s.validateNode(&n.Content[i], fmt.Sprintf("%s/%d", path, i), name); err != nil {
			return err
		}
	}

	// codeBlock хранит текст дословно, без интерпретации marks
	if n.Type == TypeCodeBlock {
		for i := range n.Content {
			if len(n.Content[i].Marks) > 0 {
				return &SchemaViolation{Path: path, Reason: "codeBlock content cannot carry marks"}
			}
		}
	}

	return nil
}

func (s *Schema) validateAttrs(n *Node, spec NodeSpec, path string) error {
	for key, attr := range spec.Attrs {
		_, present := n.Attrs[key]
		if attr.Required && (!present || n.AttrString(key) == "") {
			return &SchemaViolation{Path: path, Reason: fmt.Sprintf("%s requires attr %q", n.Type, key)}
		}
		if !present {
			continue
		}
		if len(attr.Enum) > 0 && !slices.Contains(attr.Enum, n.AttrString(key)) {
			return &SchemaViolation{Path: path, Reason: fmt.Sprintf("invalid value %q for attr %q", n.AttrString(key), key)}
		}
		if attr.Min != 0 || attr.Max != 0 {
			if v := n.AttrInt(key); v < attr.Min || v > attr.Max {
				return &SchemaViolation{Path: path, Reason: fmt.Sprintf("attr %q out of range [%d, %d]", key, attr.Min, attr.Max)}
			}
		}
	}
	return nil
}

// matches проверяет, подходит ли тип ноды под имя из контентного выражения
// (конкретный тип или группа).
func (s *Schema) matches(nodeType, name string) bool {
	if nodeType == name {
		return true
	}
	spec, ok := s.nodes[nodeType]
	if !ok {
		return false
	}
	return spec.Group == name
}

func parseContentExpr(expr string) (name string, min, max int) {
	switch {
	case expr == "":
		return "", 0, 0
	case strings.HasSuffix(expr, "+"):
		return strings.TrimSuffix(expr, "+"), 1, 0
	case strings.HasSuffix(expr, "*"):
		return strings.TrimSuffix(expr, "*"), 0, 0
	default:
		// ровно один ребенок
		return expr, 1, 1
	}
}

// ApplyDefaults заполняет отсутствующие опциональные атрибуты ноды
// значениями по умолчанию из схемы.
func (s *Schema) ApplyDefaults(n *Node) {
	spec, ok := s.nodes[n.Type]
	if !ok {
		return
	}
	for key, attr := range spec.Attrs {
		if attr.Default == nil {
			continue
		}
		if _, present := n.Attrs[key]; !present {
			n.SetAttr(key, attr.Default)
		}
	}
}

// DefaultSchema - схема документа Inkwell.
var DefaultSchema = NewSchema(
	[]NodeSpec{
		{Type: TypeParagraph, Group: GroupBlock, Content: "inline*"},
		{Type: TypeHeading, Group: GroupBlock, Content: "inline*", Attrs: map[string]AttributeSpec{
			"level": {Default: 1, Min: 1, Max: 6},
		}},
		{Type: TypeText, Group: GroupInline},
		{Type: TypeHardBreak, Group: GroupInline},
		{Type: TypeBulletList, Group: GroupBlock, Content: "listItem+"},
		{Type: TypeOrderedList, Group: GroupBlock, Content: "listItem+"},
		// элемент списка содержит ровно один блок
		{Type: TypeListItem, Content: GroupBlock},
		{Type: TypeBlockquote, Group: GroupBlock, Content: "block+"},
		{Type: TypeTable, Group: GroupBlock, Content: "tableRow*"},
		{Type: TypeTableRow, Content: "cell*"},
		{Type: TypeTableCell, Group: "cell", Content: "block*", Attrs: map[string]AttributeSpec{
			"colspan": {Default: 1},
			"rowspan": {Default: 1},
		}},
		{Type: TypeTableHeader, Group: "cell", Content: "block*", Attrs: map[string]AttributeSpec{
			"colspan": {Default: 1},
			"rowspan": {Default: 1},
		}},
		{Type: TypeCodeBlock, Group: GroupBlock, Content: "text*", Attrs: map[string]AttributeSpec{
			"language": {Default: ""},
		}},
		{Type: TypeImage, Group: GroupBlock, Atomic: true, Attrs: map[string]AttributeSpec{
			"src":       {Required: true},
			"alt":       {Default: ""},
			"width":     {Default: "100%"},
			"textAlign": {Default: "left", Enum: []string{"left", "center", "right"}},
		}},
		{Type: TypeAttachment, Group: GroupBlock, Atomic: true, Attrs: map[string]AttributeSpec{
			"src":      {Required: true},
			"fileName": {Default: ""},
			"fileSize": {Default: ""},
			"type":     {Default: ""},
		}},
		{Type: TypeYoutube, Group: GroupBlock, Atomic: true, Attrs: map[string]AttributeSpec{
			"src": {Required: true},
		}},
		{Type: TypeIframe, Group: GroupBlock, Atomic: true, Attrs: map[string]AttributeSpec{
			"src": {Required: true},
		}},
		{Type: TypeCallout, Group: GroupBlock, Content: "inline*", Attrs: map[string]AttributeSpec{
			"type": {Default: "info", Enum: CalloutTypes},
		}},
		{Type: TypeColumnsContainer, Group: GroupBlock, Content: "column+"},
		{Type: TypeColumn, Content: "block+", Attrs: map[string]AttributeSpec{
			"width": {Default: "50%"},
		}},
	},
	[]MarkSpec{
		{Type: MarkBold},
		{Type: MarkItalic},
		{Type: MarkStrike},
		{Type: MarkUnderline},
		{Type: MarkCode},
		{Type: MarkLink, Attrs: map[string]AttributeSpec{
			"href": {Required: true},
		}},
	},
)
