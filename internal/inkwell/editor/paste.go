package editor

import (
	"regexp"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// Идентификатор файла Drive - сегмент между "/d/" и следующим "/".
var driveFileIDPattern = regexp.MustCompile(`drive\.google\.com/file/d/([^/?#]+)`)

// HandlePaste перехватывает вставку plain text в позицию path. Текст,
// совпадающий со ссылкой на файл Google Drive, заменяется image-нодой с
// прямым content-URL, сырой текст ссылки в документ не попадает. Прочий
// текст вставляется параграфом.
func (s *Session) HandlePaste(path Path, text string) error {
	if m := driveFileIDPattern.FindStringSubmatch(text); m != nil {
		img := document.NewImage("https://drive.google.com/uc?export=view&id=" + m[1])
		return s.InsertAt(path, img)
	}
	return s.InsertAt(path, document.NewParagraph(document.NewText(text)))
}
