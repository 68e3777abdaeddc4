// DAO (Data Access Object) - предоставляет интерфейс для взаимодействия с базой данных.
// Содержит модели контента секций, файловых вложений и журнала незакрепленных загрузок,
// а также операции над ними.
//
// Основные возможности:
//   - Хранение контента секций как сериализованного дерева документа.
//   - Учет файловых вложений с каскадным удалением blob при удалении записи.
//   - Журнал незакрепленных загрузок для отложенного удаления файлов.
package dao

import (
	"github.com/aisa-it/inkwell/internal/inkwell/config"
	filestorage "github.com/aisa-it/inkwell/internal/inkwell/file-storage"
	"github.com/gofrs/uuid"
)

var Config *config.Config
var FileStorage filestorage.FileStorage

// GenID генерирует уникальный идентификатор в формате UUID.
// Не принимает параметров и возвращает строку, представляющую собой UUID.
func GenID() string {
	u2, _ := uuid.NewV4()
	return u2.String()
}

// GenUUID генерирует уникальный идентификатор в формате UUID. Не принимает параметров и возвращает UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}
