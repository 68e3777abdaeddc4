// Пакет htmlrender преобразует дерево документа в HTML для read-only
// отображения. Это чистая функция от распарсенного документа: рендерер
// ничего не мутирует и не зависит от редактируемой поверхности, поэтому
// пригоден для витрин, которые никогда не загружают редактор.
//
// Основные возможности:
//   - Покрытие всех типов нод словаря, включая атомарные.
//   - Пропуск неизвестных типов нод без ошибок.
//   - Fallback-карточка "внешний файл" для битых изображений, идентичная
//     поведению редактора.
//   - Санитизация результата для контента, пришедшего не из редактора.
package htmlrender

import (
	"fmt"
	"html"
	"strings"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// Render рендерит документ в HTML. Неизвестные типы нод молча пропускаются.
func Render(doc *document.Document) string {
	var b strings.Builder
	for i := range doc.Content {
		renderNode(&b, &doc.Content[i])
	}
	return b.String()
}

// RenderJSON рендерит сериализованный контент. Некорректный JSON или
// отсутствие doc-корня дают пустой вывод: одна битая секция не должна
// ронять страницу из валидных секций.
func RenderJSON(data []byte) string {
	doc, err := document.ParseBytes(data)
	if err != nil {
		return ""
	}
	return Render(doc)
}

func renderNode(b *strings.Builder, n *document.Node) {
	switch n.Type {
	case document.TypeParagraph:
		b.WriteString("<p>")
		renderChildren(b, n)
		b.WriteString("</p>")
	case document.TypeHeading:
		level := n.AttrInt("level")
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		renderChildren(b, n)
		fmt.Fprintf(b, "</h%d>", level)
	case document.TypeText:
		renderText(b, n)
	case document.TypeHardBreak:
		b.WriteString("<br>")
	case document.TypeBulletList:
		b.WriteString("<ul>")
		renderChildren(b, n)
		b.WriteString("</ul>")
	case document.TypeOrderedList:
		b.WriteString("<ol>")
		renderChildren(b, n)
		b.WriteString("</ol>")
	case document.TypeListItem:
		b.WriteString("<li>")
		renderChildren(b, n)
		b.WriteString("</li>")
	case document.TypeBlockquote:
		b.WriteString("<blockquote>")
		renderChildren(b, n)
		b.WriteString("</blockquote>")
	case document.TypeCodeBlock:
		renderCodeBlock(b, n)
	case document.TypeTable:
		renderTable(b, n)
	case document.TypeTableRow:
		b.WriteString("<tr>")
		renderChildren(b, n)
		b.WriteString("</tr>")
	case document.TypeTableCell:
		renderCell(b, n, "td")
	case document.TypeTableHeader:
		renderCell(b, n, "th")
	case document.TypeImage:
		renderImage(b, n)
	case document.TypeAttachment:
		renderAttachment(b, n)
	case document.TypeYoutube:
		renderYoutube(b, n)
	case document.TypeIframe:
		renderIframe(b, n)
	case document.TypeCallout:
		renderCallout(b, n)
	case document.TypeColumnsContainer:
		b.WriteString(`<div class="columns">`)
		renderChildren(b, n)
		b.WriteString("</div>")
	case document.TypeColumn:
		width := n.AttrString("width")
		if width == "" {
			width = "50%"
		}
		fmt.Fprintf(b, `<div class="column" style="width: %s">`, html.EscapeString(width))
		renderChildren(b, n)
		b.WriteString("</div>")
	default:
		// Неизвестный тип из будущей версии схемы: пропустить, не падать
	}
}

func renderChildren(b *strings.Builder, n *document.Node) {
	for i := range n.Content {
		renderNode(b, &n.Content[i])
	}
}

// Открывающий и закрывающий теги для mark. Порядок marks в слайсе
// определяет вложенность: первый mark оборачивает текст ближе всего.
func markTags(m document.Mark) (string, string) {
	switch m.Type {
	case document.MarkBold:
		return "<strong>", "</strong>"
	case document.MarkItalic:
		return "<em>", "</em>"
	case document.MarkStrike:
		return "<s>", "</s>"
	case document.MarkUnderline:
		return "<u>", "</u>"
	case document.MarkCode:
		return "<code>", "</code>"
	case document.MarkLink:
		href := m.MarkAttrString("href")
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">`, html.EscapeString(href)), "</a>"
	default:
		return "", ""
	}
}

func renderText(b *strings.Builder, n *document.Node) {
	out := html.EscapeString(n.Text)
	for _, mark := range n.Marks {
		open, closing := markTags(mark)
		if open == "" {
			continue
		}
		out = open + out + closing
	}
	b.WriteString(out)
}

func renderCodeBlock(b *strings.Builder, n *document.Node) {
	lang := n.AttrString("language")
	if lang != "" {
		fmt.Fprintf(b, `<pre><code class="language-%s">`, html.EscapeString(lang))
	} else {
		b.WriteString("<pre><code>")
	}
	// содержимое дословно, marks не интерпретируются
	b.WriteString(html.EscapeString(n.TextContent()))
	b.WriteString("</code></pre>")
}

func renderTable(b *strings.Builder, n *document.Node) {
	b.WriteString("<table>")

	// colwidth первой строки превращается в colgroup
	if widths := collectColWidths(n); len(widths) > 0 {
		b.WriteString("<colgroup>")
		for _, w := range widths {
			if w > 0 {
				fmt.Fprintf(b, `<col style="width: %dpx">`, w)
			} else {
				b.WriteString("<col>")
			}
		}
		b.WriteString("</colgroup>")
	}

	b.WriteString("<tbody>")
	renderChildren(b, n)
	b.WriteString("</tbody></table>")
}

func collectColWidths(table *document.Node) []int {
	if len(table.Content) == 0 {
		return nil
	}
	var widths []int
	for i := range table.Content[0].Content {
		cell := &table.Content[0].Content[i]
		raw, ok := cell.Attrs["colwidth"]
		if !ok {
			widths = append(widths, 0)
			continue
		}
		arr, ok := raw.([]any)
		if !ok {
			widths = append(widths, 0)
			continue
		}
		for _, v := range arr {
			if f, ok := v.(float64); ok {
				widths = append(widths, int(f))
			} else {
				widths = append(widths, 0)
			}
		}
	}
	for _, w := range widths {
		if w > 0 {
			return widths
		}
	}
	return nil
}

// Атрибуты colspan/rowspan/colwidth сохраняются ровно как в документе.
func renderCell(b *strings.Builder, n *document.Node, tag string) {
	fmt.Fprintf(b, "<%s", tag)
	if colspan := n.AttrInt("colspan"); colspan > 1 {
		fmt.Fprintf(b, ` colspan="%d"`, colspan)
	}
	if rowspan := n.AttrInt("rowspan"); rowspan > 1 {
		fmt.Fprintf(b, ` rowspan="%d"`, rowspan)
	}
	b.WriteString(">")
	renderChildren(b, n)
	fmt.Fprintf(b, "</%s>", tag)
}

// renderImage выводит изображение с теми же правилами, что редактируемая
// поверхность: ширина из атрибутов (по умолчанию 100%), выравнивание через
// justify-content контейнера, и fallback-карточка внешнего файла, которую
// клиент показывает вместо битого изображения.
func renderImage(b *strings.Builder, n *document.Node) {
	src := n.AttrString("src")
	alt := n.AttrString("alt")
	width := n.AttrString("width")
	if width == "" {
		if px := n.AttrInt("width"); px > 0 {
			width = fmt.Sprintf("%dpx", px)
		} else {
			width = "100%"
		}
	}
	align := n.AttrString("textAlign")
	if align == "" {
		align = "left"
	}

	fmt.Fprintf(b, `<div class="doc-image" style="display: flex; justify-content: %s">`, html.EscapeString(align))
	fmt.Fprintf(b, `<img src="%s" alt="%s" style="width: %s">`,
		html.EscapeString(src), html.EscapeString(alt), html.EscapeString(width))
	renderFileCard(b, src, alt, "", "")
	b.WriteString("</div>")
}

// renderFileCard выводит карточку "внешний файл" - общий fallback редактора
// и рендерера для недоступного медиа.
func renderFileCard(b *strings.Builder, src, name, caption, icon string) {
	if name == "" {
		name = "External file"
	}
	if icon == "" {
		icon = "file"
	}
	fmt.Fprintf(b, `<a class="file-card" data-icon="%s" href="%s" target="_blank" rel="noopener noreferrer">`,
		html.EscapeString(icon), html.EscapeString(src))
	fmt.Fprintf(b, `<span class="file-card-name">%s</span>`, html.EscapeString(name))
	if caption != "" {
		fmt.Fprintf(b, `<span class="file-card-caption">%s</span>`, html.EscapeString(caption))
	}
	b.WriteString("</a>")
}

// IsDriveLink определяет, размещен ли файл на Google Drive.
func IsDriveLink(src string) bool {
	return strings.Contains(src, "drive.google.com") || strings.Contains(src, "docs.google.com")
}

func renderAttachment(b *strings.Builder, n *document.Node) {
	src := n.AttrString("src")
	name := n.AttrString("fileName")
	caption := strings.TrimSpace(strings.TrimPrefix(
		n.AttrString("fileSize")+" "+n.AttrString("type"), " "))

	icon := "file"
	if IsDriveLink(src) {
		icon = "drive"
	}
	renderFileCard(b, src, name, caption, icon)
}

func renderYoutube(b *strings.Builder, n *document.Node) {
	src := n.AttrString("src")
	embed := src
	if id, ok := ExtractVideoID(src); ok {
		embed = "https://www.youtube.com/embed/" + id
	}
	fmt.Fprintf(b, `<iframe class="video-embed" src="%s" allowfullscreen></iframe>`, html.EscapeString(embed))
}

func renderIframe(b *strings.Builder, n *document.Node) {
	fmt.Fprintf(b, `<iframe src="%s"></iframe>`, html.EscapeString(n.AttrString("src")))
}

func renderCallout(b *strings.Builder, n *document.Node) {
	calloutType := n.AttrString("type")
	if calloutType == "" {
		calloutType = "info"
	}
	fmt.Fprintf(b, `<div class="callout callout-%s" data-callout="%s">`,
		html.EscapeString(calloutType), html.EscapeString(calloutType))
	fmt.Fprintf(b, `<span class="callout-icon"></span><p>`)
	renderChildren(b, n)
	b.WriteString("</p></div>")
}
