package document

// AttrString безопасно извлекает строковый атрибут ноды.
func (n *Node) AttrString(key string) string {
	return attrString(n.Attrs, key)
}

// AttrInt безопасно извлекает целочисленный атрибут ноды.
func (n *Node) AttrInt(key string) int {
	return attrInt(n.Attrs, key)
}

// AttrBool безопасно извлекает булевый атрибут ноды.
func (n *Node) AttrBool(key string) bool {
	return attrBool(n.Attrs, key)
}

// SetAttr устанавливает атрибут ноды, создавая map при необходимости.
// Числовые значения приводятся к float64, чтобы дерево после мутации
// оставалось структурно равным дереву после парсинга из JSON.
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	switch v := value.(type) {
	case int:
		n.Attrs[key] = float64(v)
	case int64:
		n.Attrs[key] = float64(v)
	default:
		n.Attrs[key] = value
	}
}

func attrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	val, ok := attrs[key]
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

func attrInt(attrs map[string]any, key string) int {
	if attrs == nil {
		return 0
	}
	val, ok := attrs[key]
	if !ok {
		return 0
	}

	// После json.Unmarshal числа приходят как float64
	if f, ok := val.(float64); ok {
		return int(f)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func attrBool(attrs map[string]any, key string) bool {
	if attrs == nil {
		return false
	}
	val, ok := attrs[key]
	if !ok {
		return false
	}
	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// MarkAttrString извлекает строковый атрибут mark (например href у link).
func (m *Mark) MarkAttrString(key string) string {
	return attrString(m.Attrs, key)
}
