package export

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sethrj/iphone-message-export/internal/smsdb"
)

// Result summarizes one ExportAll run.
type Result struct {
	Exported int
	Skipped  int
}

// ExportAll processes every chat. With workers > 1 chats are exported
// concurrently: each chat reads and writes disjoint rows and files, and
// duplicate identifiers only share an output directory, which MkdirAll
// tolerates. A failed chat stops further work and its error is returned;
// workers <= 1 degenerates to the sequential baseline.
func (e *Exporter) ExportAll(chats []smsdb.Chat, destRoot string, workers int) (Result, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu       sync.Mutex
		res      Result
		firstErr error
		stopped  atomic.Bool
	)

	jobs := make(chan smsdb.Chat)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chat := range jobs {
				if stopped.Load() {
					continue
				}

				exported, err := e.ExportChat(chat, destRoot)
				if err != nil {
					e.Log.Error("chat export failed",
						"chat_id", chat.ID, "guid", chat.GUID, "err", err)
					stopped.Store(true)
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("chat %s: %w", chat.GUID, err)
					}
					mu.Unlock()
					continue
				}

				e.Log.Debug("processed chat",
					"chat_id", chat.ID, "identifier", chat.Identifier, "exported", exported)
				mu.Lock()
				if exported {
					res.Exported++
				} else {
					res.Skipped++
				}
				mu.Unlock()
			}
		}()
	}

	for _, chat := range chats {
		jobs <- chat
	}
	close(jobs)
	wg.Wait()

	return res, firstErr
}
