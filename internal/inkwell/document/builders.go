package document

// Конструкторы готовых фрагментов дерева. Все числовые атрибуты кладутся
// как float64, чтобы построенные ноды были структурно неотличимы от
// распарсенных из JSON.

func NewText(text string, marks ...Mark) Node {
	return Node{Type: TypeText, Text: text, Marks: marks}
}

// NewParagraph создает параграф. Без детей контент остается nil,
// omitempty не сериализует его, round-trip сохраняет структурное равенство.
func NewParagraph(children ...Node) Node {
	return Node{Type: TypeParagraph, Content: children}
}

func NewHeading(level int, children ...Node) Node {
	n := Node{Type: TypeHeading, Content: children}
	n.SetAttr("level", level)
	return n
}

func NewCodeBlock(language string) Node {
	n := Node{Type: TypeCodeBlock}
	n.SetAttr("language", language)
	return n
}

func NewCallout(calloutType string, children ...Node) Node {
	n := Node{Type: TypeCallout, Content: children}
	n.SetAttr("type", calloutType)
	return n
}

func NewImage(src string) Node {
	n := Node{Type: TypeImage}
	n.SetAttr("src", src)
	n.SetAttr("alt", "")
	n.SetAttr("width", "100%")
	n.SetAttr("textAlign", "left")
	return n
}

func NewAttachment(src, fileName, fileSize, fileType string) Node {
	n := Node{Type: TypeAttachment}
	n.SetAttr("src", src)
	n.SetAttr("fileName", fileName)
	n.SetAttr("fileSize", fileSize)
	n.SetAttr("type", fileType)
	return n
}

func NewYoutube(src string) Node {
	n := Node{Type: TypeYoutube}
	n.SetAttr("src", src)
	return n
}

func NewIframe(src string) Node {
	n := Node{Type: TypeIframe}
	n.SetAttr("src", src)
	return n
}

// NewColumns строит контейнер из count пустых колонок. Контейнер держит
// 2 или 3 колонки; вызывающая сторона отвечает за диапазон.
func NewColumns(count int) Node {
	width := "50%"
	if count == 3 {
		width = "33%"
	}
	cols := make([]Node, 0, count)
	for range count {
		col := Node{Type: TypeColumn, Content: []Node{NewParagraph()}}
		col.SetAttr("width", width)
		cols = append(cols, col)
	}
	return Node{Type: TypeColumnsContainer, Content: cols}
}

// NewTable строит каркас таблицы rows x cols с пустыми ячейками,
// первая строка - заголовочная.
func NewTable(rows, cols int) Node {
	table := Node{Type: TypeTable, Content: make([]Node, 0, rows)}
	for r := range rows {
		row := Node{Type: TypeTableRow, Content: make([]Node, 0, cols)}
		cellType := TypeTableCell
		if r == 0 {
			cellType = TypeTableHeader
		}
		for range cols {
			cell := Node{Type: cellType, Content: []Node{NewParagraph()}}
			cell.SetAttr("colspan", 1)
			cell.SetAttr("rowspan", 1)
			row.Content = append(row.Content, cell)
		}
		table.Content = append(table.Content, row)
	}
	return table
}

func NewListItem(block Node) Node {
	return Node{Type: TypeListItem, Content: []Node{block}}
}

func NewBulletList(items ...Node) Node {
	return Node{Type: TypeBulletList, Content: items}
}

func NewOrderedList(items ...Node) Node {
	return Node{Type: TypeOrderedList, Content: items}
}
