package mediatracker

import (
	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// ExtractReferences собирает src всех медиа-нод контента: image, iframe и
// attachment, обходом в глубину. Дубликаты сохраняются. Некорректный или
// не-JSON контент дает пустой набор, ошибок наружу нет.
func ExtractReferences(content []byte) []string {
	doc, err := document.ParseBytes(content)
	if err != nil {
		return nil
	}

	var refs []string
	doc.Walk(func(n *document.Node) bool {
		switch n.Type {
		case document.TypeImage, document.TypeIframe, document.TypeAttachment:
			if src := n.AttrString("src"); src != "" {
				refs = append(refs, src)
			}
		}
		return false
	})
	return refs
}
