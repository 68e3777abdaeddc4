// Политика санитизации для HTML, который рендерер отдает наружу. Для
// контента, собранного редактором, она избыточна (рендерер сам экранирует
// текст), но контент секции может прийти из внешних правок - тогда вывод
// прогоняется через политику перед отдачей.
package htmlrender

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var RenderPolicy = buildRenderPolicy()

func buildRenderPolicy() *bluemonday.Policy {
	sizeRegexp := regexp.MustCompile(`^\d+(px|%)$`)
	calloutRegexp := regexp.MustCompile(`^(info|warning|error|success)$`)
	classRegexp := regexp.MustCompile(`^(doc-image|file-card|file-card-name|file-card-caption|video-embed|columns|column|callout-icon|language-[a-zA-Z0-9+#-]+|callout( callout-(info|warning|error|success))?)$`)

	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classRegexp).Globally()
	p.AllowAttrs("style").OnElements("img", "div", "col")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("data-callout").Matching(calloutRegexp).OnElements("div")
	p.AllowAttrs("data-icon").OnElements("a")
	p.AllowAttrs("width").Matching(sizeRegexp).OnElements("img")
	p.AllowAttrs("src", "allowfullscreen").OnElements("iframe")
	p.AllowAttrs("target", "rel").OnElements("a")
	p.AllowElements("iframe", "colgroup", "col", "figure", "span", "u", "s")
	p.AllowStyles("width", "display", "justify-content").Globally()
	p.RequireNoFollowOnLinks(false)
	return p
}

// RenderSanitized рендерит контент и пропускает результат через политику.
// Используется для секций, которые могли быть отредактированы в обход
// редактора.
func RenderSanitized(data []byte) string {
	return RenderPolicy.Sanitize(RenderJSON(data))
}
