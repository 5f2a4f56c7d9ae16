package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openioc/vmecore/internal/scan"
	"go.uber.org/zap"
)

// UpdateStore is the slice of the Postgres client the archiver needs.
type UpdateStore interface {
	InsertUpdate(ctx context.Context, row UpdateRow) error
}

// Archiver drains record updates into the archive on its own goroutine so
// a slow database never stalls a scan loop. The inbox is bounded; updates
// arriving while it is full are dropped and counted.
type Archiver struct {
	store  UpdateStore
	logger *zap.Logger
	inbox  chan scan.Update

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	dropped uint64
}

func NewArchiver(store UpdateStore, logger *zap.Logger) *Archiver {
	return &Archiver{
		store:  store,
		logger: logger,
		inbox:  make(chan scan.Update, 1024),
	}
}

// Publish implements scan.Sink. It never blocks.
func (a *Archiver) Publish(update scan.Update) {
	select {
	case a.inbox <- update:
	default:
		a.mu.Lock()
		a.dropped++
		dropped := a.dropped
		a.mu.Unlock()
		a.logger.Warn("Archive inbox full, dropping update",
			zap.String("record", update.Record),
			zap.Uint64("dropped_total", dropped))
	}
}

func (a *Archiver) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.stopChan = make(chan struct{})

	a.wg.Add(1)
	go a.drain()
}

// Stop halts the drain loop. Updates still queued in the inbox are written
// out before Stop returns.
func (a *Archiver) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopChan)
	a.mu.Unlock()

	a.wg.Wait()
}

func (a *Archiver) drain() {
	defer a.wg.Done()

	for {
		select {
		case update := <-a.inbox:
			a.write(update)
		case <-a.stopChan:
			for {
				select {
				case update := <-a.inbox:
					a.write(update)
				default:
					return
				}
			}
		}
	}
}

func (a *Archiver) write(update scan.Update) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := UpdateRow{
		ID:         uuid.New(),
		RecordName: update.Record,
		RecordKind: update.Kind,
		Value:      update.Value,
		RawValue:   update.Raw,
		Condition:  update.Condition,
		Severity:   update.Severity,
		RecordedAt: time.Now().UTC(),
	}

	if err := a.store.InsertUpdate(ctx, row); err != nil {
		a.logger.Error("Failed to archive record update",
			zap.String("record", update.Record),
			zap.Error(err))
	}
}

// Dropped reports how many updates were discarded because the inbox was
// full.
func (a *Archiver) Dropped() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}
