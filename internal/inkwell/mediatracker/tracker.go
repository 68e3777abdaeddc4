// Пакет mediatracker держит blob-хранилище согласованным с контентом
// документов без ручного учета. Ссылки на медиа извлекаются из дерева при
// каждом сохранении; пропавшие из контента файлы попадают в журнал
// отложенного удаления с окном спасения, просроченные записи убирает
// периодическая уборка. Жесткое удаление секций сносит медиа сразу, без
// окна.
package mediatracker

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/aisa-it/inkwell/internal/inkwell/dao"
	filestorage "github.com/aisa-it/inkwell/internal/inkwell/file-storage"
)

const (
	// GraceWindow - окно спасения: раньше него запись журнала не удаляется.
	GraceWindow = 24 * time.Hour
	// SweepBatch - максимум записей журнала, обрабатываемых за одну уборку.
	SweepBatch = 100
)

// Tracker отслеживает жизненный цикл медиа-файлов, встроенных в контент.
type Tracker struct {
	db      *gorm.DB
	storage filestorage.FileStorage
	webURL  *url.URL
	grace   time.Duration
	batch   int
	swept   prometheus.Counter
}

type TrackerOption func(*Tracker)

func WithGraceWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) { t.grace = d }
}

func WithSweepBatch(n int) TrackerOption {
	return func(t *Tracker) { t.batch = n }
}

func NewTracker(db *gorm.DB, storage filestorage.FileStorage, webURL *url.URL, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		db:      db,
		storage: storage,
		webURL:  webURL,
		grace:   GraceWindow,
		batch:   SweepBatch,
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "media_swept_blobs_total",
			Help: "Total count of blobs deleted by the pending uploads sweep",
		}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Collector возвращает метрику уборки для регистрации в реестре.
func (t *Tracker) Collector() prometheus.Collector {
	return t.swept
}

// IsManaged сообщает, принадлежит ли URL управляемому пространству файлов:
// путь /api/file/ на собственном хосте либо относительный. Внешние ссылки
// трекер не трогает.
func (t *Tracker) IsManaged(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host != "" && t.webURL != nil && u.Host != t.webURL.Host {
		return false
	}
	return strings.HasPrefix(u.Path, "/api/file/")
}

// TrackUpload ставит свежезагруженный файл в журнал до того, как его URL
// попадет в какое-либо сохранение. Загрузки, так и не закрепленные в
// документе, подберет уборка.
func (t *Tracker) TrackUpload(tx *gorm.DB, rawURL string) error {
	if !t.IsManaged(rawURL) {
		return nil
	}
	return dao.UpsertPendingUpload(tx, rawURL)
}

// AssetIdFromURL возвращает ключ файла в хранилище из управляемого URL.
func AssetIdFromURL(raw string) (uuid.UUID, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(path.Base(u.Path))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
