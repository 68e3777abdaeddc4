package editor

import (
	"fmt"
	"slices"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

// CycleCalloutType переключает тип callout на следующий в фиксированном
// порядке перечисления, с заворотом на последнем. Это единственный способ
// сменить тип: выпадающего списка у callout нет.
func (s *Session) CycleCalloutType(path Path) error {
	return s.mutate(func(d *document.Document) error {
		n, err := nodeAt(d, path)
		if err != nil {
			return err
		}
		if n.Type != document.TypeCallout {
			return fmt.Errorf("cycle target is %s, want callout", n.Type)
		}
		idx := slices.Index(document.CalloutTypes, n.AttrString("type"))
		n.SetAttr("type", document.CalloutTypes[(idx+1)%len(document.CalloutTypes)])
		return nil
	})
}

// InsertColumns вставляет каркас контейнера из 2 или 3 колонок с пустым
// параграфом в каждой.
func (s *Session) InsertColumns(path Path, count int) error {
	if count < 2 || count > 3 {
		return fmt.Errorf("columns container holds 2 or 3 columns, got %d", count)
	}
	return s.InsertAt(path, document.NewColumns(count))
}

// DeleteColumns удаляет контейнер колонок целиком вместе с содержимым.
// Контейнер без колонок через API сессии недостижим: удаление всегда
// атомарно по всему поддереву.
func (s *Session) DeleteColumns(path Path) error {
	n, err := nodeAt(s.doc, path)
	if err != nil {
		return err
	}
	if n.Type != document.TypeColumnsContainer {
		return fmt.Errorf("delete target is %s, want columnsContainer", n.Type)
	}
	return s.Delete(path)
}

const tabIndent = "    "

// HandleTab обрабатывает Tab без передачи фокуса: внутри списка текущий
// элемент опускается на уровень глубже, вне списка в начало блока
// вставляется буквальный отступ в 4 пробела.
func (s *Session) HandleTab(path Path) error {
	return s.mutate(func(d *document.Document) error {
		// ближайший предок-listItem определяет списочный контекст
		for cut := len(path); cut > 0; cut-- {
			n, err := nodeAt(d, path[:cut])
			if err != nil {
				return err
			}
			if n.Type == document.TypeListItem {
				return sinkListItem(d, path[:cut])
			}
		}
		return indentBlock(d, path)
	})
}

// sinkListItem опускает элемент списка на уровень глубже. Если предыдущий
// соседний элемент уже держит вложенный список того же типа, элемент
// переносится в его конец, иначе оборачивается во вложенный список на месте.
func sinkListItem(d *document.Document, itemPath Path) error {
	list, err := nodeAt(d, itemPath[:len(itemPath)-1])
	if err != nil {
		return err
	}
	idx := itemPath[len(itemPath)-1]
	item := list.Content[idx]

	if idx > 0 && len(list.Content[idx-1].Content) == 1 {
		prevBlock := &list.Content[idx-1].Content[0]
		if prevBlock.Type == list.Type {
			prevBlock.Content = append(prevBlock.Content, item)
			list.Content = slices.Delete(list.Content, idx, idx+1)
			return nil
		}
	}

	nested := document.Node{Type: list.Type, Content: []document.Node{item}}
	list.Content[idx] = document.NewListItem(nested)
	return nil
}

func indentBlock(d *document.Document, path Path) error {
	n, err := nodeAt(d, path)
	if err != nil {
		return err
	}
	if n.Type == document.TypeText {
		n.Text = tabIndent + n.Text
		return nil
	}
	// для атомарных нод вставка отклоняется валидацией
	n.Content = slices.Insert(n.Content, 0, document.NewText(tabIndent))
	return nil
}
