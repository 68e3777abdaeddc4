package editor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// HandleDrop загружает брошенный на поверхность файл через колбэк сессии и
// вставляет в позицию дропа image-ноду для image/* либо attachment для
// остальных типов. Загрузка асинхронна относительно поверхности: дерево не
// меняется, пока она не завершится, при ошибке не меняется вовсе.
func (s *Session) HandleDrop(ctx context.Context, path Path, name, contentType string, r io.Reader, size int64) error {
	if s.upload == nil {
		return ErrNoUpload
	}

	url, err := s.upload(ctx, name, contentType, r, size)
	if err != nil {
		return fmt.Errorf("upload dropped file %s: %w", name, err)
	}

	var node document.Node
	if strings.HasPrefix(contentType, "image/") {
		node = document.NewImage(url)
		node.SetAttr("alt", name)
	} else {
		node = document.NewAttachment(url, name, humanFileSize(size), fileTypeTag(name))
	}
	return s.InsertAt(path, node)
}

// humanFileSize форматирует размер файла в килобайтах с одним знаком после
// запятой.
func humanFileSize(size int64) string {
	return fmt.Sprintf("%.1f KB", float64(size)/1024)
}

// fileTypeTag - тег типа из расширения имени файла, без точки.
func fileTypeTag(name string) string {
	return strings.TrimPrefix(filepath.Ext(name), ".")
}
