// Пакет содержит определения ошибок, отдаваемых наружу HTTP-слоем. Каждая
// ошибка имеет код, статус HTTP и описание на двух языках, что позволяет
// удобно обрабатывать исключения и предоставлять информативные сообщения
// пользователю.
//
// Основные возможности:
//   - Определение ошибок работы с контентом секций, файлами и загрузками.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Представление ошибки в формате протокола TUS.
package apierrors

import (
	"encoding/json"
	"net/http"

	tusd "github.com/tus/tusd/v2/pkg/handler"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

func (e DefinedError) TusdError() tusd.Error {
	b, _ := json.Marshal(e)
	return tusd.Error{
		HTTPResponse: tusd.HTTPResponse{
			StatusCode: e.StatusCode,
			Body:       string(b),
			Header: tusd.HTTPHeader{
				"Content-Type": "application/json",
			},
		},
	}
}

const (
	UploadMaxSizeMB = 100
)

var (
	// 1*** - generic errors
	ErrGeneric    = DefinedError{Code: 1000, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}
	ErrBadRequest = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}

	// 2*** - section content errors
	ErrSectionNotFound  = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "section not found", RuErr: "Секция не найдена"}
	ErrInvalidContent   = DefinedError{Code: 2002, StatusCode: http.StatusBadRequest, Err: "content is not a valid document", RuErr: "Контент не является корректным документом"}
	ErrContentTooLarge  = DefinedError{Code: 2003, StatusCode: http.StatusRequestEntityTooLarge, Err: "content too large", RuErr: "Контент слишком большой"}
	ErrInvalidSectionId = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "invalid page or section id", RuErr: "Некорректный идентификатор страницы или секции"}

	// 3*** - file errors
	ErrAssetNotFound    = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "file not found", RuErr: "Файл не найден"}
	ErrFileEmpty        = DefinedError{Code: 3002, StatusCode: http.StatusBadRequest, Err: "file is empty", RuErr: "Файл пустой"}
	ErrFileTooLarge     = DefinedError{Code: 3003, StatusCode: http.StatusRequestEntityTooLarge, Err: "file too large", RuErr: "Файл слишком большой"}
	ErrFileUploadFailed = DefinedError{Code: 3004, StatusCode: http.StatusInternalServerError, Err: "file upload failed", RuErr: "Не удалось загрузить файл"}
)
