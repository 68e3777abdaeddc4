// Пакет htmlconv парсит HTML-разметку в дерево документа. Это путь
// десериализации для легаси-контента: секции, сохраненные до перехода на
// JSON-формат, и вставка из внешних редакторов. Парсер терпим к разметке:
// неизвестные теги не ошибка, в них просто спускаемся дальше.
package htmlconv

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// ParseHTML парсит HTML в документ.
func ParseHTML(r io.Reader) (*document.Document, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := document.NewDocument()
	for el := getBody(rootNode).FirstChild; el != nil; el = el.NextSibling {
		if el.Type != html.ElementNode {
			continue
		}
		if block := parseBlock(el); block != nil {
			doc.Content = append(doc.Content, *block)
		}
	}

	return doc, nil
}

func parseBlock(el *html.Node) *document.Node {
	switch el.Data {
	case "p":
		return parseParagraph(el)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(strings.TrimPrefix(el.Data, "h"))
		n := document.NewHeading(level, parseInline(el)...)
		return &n
	case "ul", "ol":
		return parseList(el)
	case "blockquote":
		return parseBlockquote(el)
	case "pre":
		return parseCodeBlock(el)
	case "table":
		return parseTable(el)
	case "img":
		return parseImage(el)
	case "iframe":
		src := getAttrValue("src", el.Attr)
		if src == "" {
			return nil
		}
		n := document.NewIframe(src)
		return &n
	case "div":
		if attrExists("data-callout", el.Attr) {
			return parseCallout(el)
		}
		if attrExists("data-columns", el.Attr) {
			return parseColumns(el)
		}
	}

	// неизвестный или оберточный тег: спускаемся и берем первый
	// распознанный блок
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if block := parseBlock(child); block != nil {
			return block
		}
	}
	return nil
}

func parseParagraph(root *html.Node) *document.Node {
	n := document.NewParagraph(parseInline(root)...)
	return &n
}

// parseInline собирает инлайн-контент элемента: текстовые прогоны с marks
// из вложенных тегов форматирования, переносы строк и изображения.
func parseInline(root *html.Node) []document.Node {
	var content []document.Node
	var walk func(el *html.Node, marks []document.Mark)

	walk = func(el *html.Node, marks []document.Mark) {
		for child := el.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case html.TextNode:
				if child.Data == "" {
					continue
				}
				content = append(content, document.NewText(child.Data, slices.Clone(marks)...))
			case html.ElementNode:
				switch child.Data {
				case "br":
					content = append(content, document.Node{Type: document.TypeHardBreak})
				case "strong", "b":
					walk(child, append(marks, document.Mark{Type: document.MarkBold}))
				case "em", "i":
					walk(child, append(marks, document.Mark{Type: document.MarkItalic}))
				case "u":
					walk(child, append(marks, document.Mark{Type: document.MarkUnderline}))
				case "s", "del":
					walk(child, append(marks, document.Mark{Type: document.MarkStrike}))
				case "code":
					walk(child, append(marks, document.Mark{Type: document.MarkCode}))
				case "a":
					href := getAttrValue("href", child.Attr)
					if href == "" {
						walk(child, marks)
						continue
					}
					walk(child, append(marks, document.Mark{
						Type:  document.MarkLink,
						Attrs: map[string]any{"href": href},
					}))
				default:
					walk(child, marks)
				}
			}
		}
	}

	walk(root, nil)
	return content
}

func parseList(root *html.Node) *document.Node {
	listType := document.TypeBulletList
	if root.Data == "ol" {
		listType = document.TypeOrderedList
	}

	list := document.Node{Type: listType}
	for li := root.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var block *document.Node
		for child := li.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				if block = parseBlock(child); block != nil {
					break
				}
			}
		}
		if block == nil {
			// li с голым текстом без <p>
			p := document.NewParagraph(parseInline(li)...)
			block = &p
		}
		list.Content = append(list.Content, document.NewListItem(*block))
	}

	if len(list.Content) == 0 {
		return nil
	}
	return &list
}

func parseBlockquote(root *html.Node) *document.Node {
	quote := document.Node{Type: document.TypeBlockquote}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if block := parseBlock(child); block != nil {
			quote.Content = append(quote.Content, *block)
		}
	}
	if len(quote.Content) == 0 {
		p := document.NewParagraph(parseInline(root)...)
		quote.Content = append(quote.Content, p)
	}
	return &quote
}

func parseCodeBlock(root *html.Node) *document.Node {
	var text string
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			text += child.Data
		}
		return false
	})

	var language string
	if codeEl := findElementByTagName(root, "code"); codeEl != nil {
		for _, class := range strings.Fields(getAttrValue("class", codeEl.Attr)) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				language = lang
				break
			}
		}
	}

	block := document.NewCodeBlock(language)
	if text != "" {
		block.Content = []document.Node{{Type: document.TypeText, Text: text}}
	}
	return &block
}

func parseImage(el *html.Node) *document.Node {
	src := getAttrValue("src", el.Attr)
	if src == "" {
		return nil
	}

	img := document.NewImage(src)
	if alt := getAttrValue("alt", el.Attr); alt != "" {
		img.SetAttr("alt", alt)
	}
	for _, style := range parseStyles(getAttrValue("style", el.Attr)) {
		if style.Key == "width" {
			img.SetAttr("width", style.Val)
		}
	}
	return &img
}

func parseTable(root *html.Node) *document.Node {
	table := document.Node{Type: document.TypeTable}

	body := findElementByTagName(root, "tbody")
	if body == nil {
		body = root
	}

	for tr := body.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.Data != "tr" {
			continue
		}

		row := document.Node{Type: document.TypeTableRow}
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}

			cellType := document.TypeTableCell
			if td.Data == "th" {
				cellType = document.TypeTableHeader
			}
			cell := document.Node{Type: cellType}
			cell.SetAttr("colspan", atoiDefault(getAttrValue("colspan", td.Attr), 1))
			cell.SetAttr("rowspan", atoiDefault(getAttrValue("rowspan", td.Attr), 1))

			for child := td.FirstChild; child != nil; child = child.NextSibling {
				if child.Type != html.ElementNode {
					continue
				}
				if block := parseBlock(child); block != nil {
					cell.Content = append(cell.Content, *block)
				}
			}
			if len(cell.Content) == 0 {
				cell.Content = append(cell.Content, document.NewParagraph(parseInline(td)...))
			}

			row.Content = append(row.Content, cell)
		}

		if len(row.Content) > 0 {
			table.Content = append(table.Content, row)
		}
	}

	return &table
}

func parseCallout(root *html.Node) *document.Node {
	typ := getAttrValue("data-callout", root.Attr)
	if !slices.Contains(document.CalloutTypes, typ) {
		typ = "info"
	}
	callout := document.NewCallout(typ)
	callout.Content = parseInline(root)
	return &callout
}

func parseColumns(root *html.Node) *document.Node {
	container := document.Node{Type: document.TypeColumnsContainer}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "div" {
			continue
		}

		col := document.Node{Type: document.TypeColumn}
		if width := getAttrValue("data-width", child.Attr); width != "" {
			col.SetAttr("width", width)
		}
		for inner := child.FirstChild; inner != nil; inner = inner.NextSibling {
			if inner.Type != html.ElementNode {
				continue
			}
			if block := parseBlock(inner); block != nil {
				col.Content = append(col.Content, *block)
			}
		}
		if len(col.Content) == 0 {
			col.Content = append(col.Content, document.NewParagraph())
		}
		container.Content = append(container.Content, col)
	}

	if len(container.Content) == 0 {
		return nil
	}
	return &container
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	if body := findElementByTagName(rootNode, "body"); body != nil {
		return body
	}
	return rootNode
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func attrExists(key string, attrs []html.Attribute) bool {
	return slices.ContainsFunc(attrs, func(attr html.Attribute) bool {
		return attr.Key == key
	})
}

func parseStyles(raw string) []html.Attribute {
	var res []html.Attribute
	for styleRaw := range strings.SplitSeq(raw, ";") {
		arr := strings.SplitN(styleRaw, ":", 2)
		if len(arr) < 2 {
			continue
		}
		res = append(res, html.Attribute{
			Key: strings.TrimSpace(arr[0]),
			Val: strings.TrimSpace(arr[1]),
		})
	}
	return res
}

func atoiDefault(raw string, def int) int {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 1 {
		return def
	}
	return i
}
