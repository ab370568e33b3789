package learn

import (
	"context"

	"github.com/Veraticus/ledger-reconcile/internal/common"
)

// RenameEvent is one confirmed payee rename recorded as a side effect of an
// automatic rule, replayable to seed the payee pattern store.
type RenameEvent struct {
	Original  string `json:"original"`
	Canonical string `json:"canonical"`
}

// historyChunkSize bounds how many events are processed between cancellation
// checks and progress reports.
const historyChunkSize = 50

// LearnFromHistory replays confirmed renames in chunks so long histories
// yield cooperatively. The optional progress callback receives (done, total)
// after every chunk.
func (l *Learner) LearnFromHistory(ctx context.Context, events []RenameEvent, progress func(done, total int)) error {
	total := len(events)
	if total == 0 {
		return nil
	}

	for start := 0; start < total; start += historyChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + historyChunkSize
		if end > total {
			end = total
		}
		for _, event := range events[start:end] {
			l.ConfirmPayeeRename(ctx, event.Original, event.Canonical)
		}

		if progress != nil {
			progress(end, total)
		}
	}

	common.LogDebug("history replay complete", common.Fields{"events": total})
	return nil
}
