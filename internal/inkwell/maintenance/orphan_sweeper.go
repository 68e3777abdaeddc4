// Периодические задачи обслуживания хранилища.
//
// Основные возможности:
//   - Уборка незакрепленных загрузок: просроченные записи журнала удаляются
//     вместе с файлами, пачками ограниченного размера.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/aisa-it/inkwell/internal/inkwell/mediatracker"
)

type OrphanSweeper struct {
	tracker *mediatracker.Tracker
}

func NewOrphanSweeper(tracker *mediatracker.Tracker) *OrphanSweeper {
	return &OrphanSweeper{tracker}
}

// Sweep запускает одну итерацию уборки. Вызывается по расписанию.
func (os *OrphanSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	deleted, err := os.tracker.Sweep(ctx)
	if err != nil {
		slog.Error("Orphan sweep fail", "deleted", deleted, "err", err)
	}
}
