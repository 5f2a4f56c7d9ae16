package scan

import (
	"sync"
	"time"

	"github.com/openioc/vmecore/internal/types"
	"go.uber.org/zap"
)

// Update is a snapshot of one record published after every scan cycle.
type Update struct {
	Record    string               `json:"record"`
	Kind      types.RecordKind     `json:"kind"`
	Value     any                  `json:"value"`
	Raw       uint16               `json:"raw"`
	Condition types.AlarmCondition `json:"alarm_condition,omitempty"`
	Severity  types.Severity       `json:"severity"`
}

// Sink receives record updates produced by the scanner.
type Sink interface {
	Publish(Update)
}

// Entry describes how one input record is scanned. Interval and Handle are
// mutually exclusive: a positive interval means periodic scanning, a
// non-nil handle means I/O-interrupt scanning.
type Entry struct {
	Record   string
	Interval time.Duration
	Handle   *Handle
	Process  func() error
	Snapshot func() Update
}

// Scanner drives the scan cycle for all input records. Each entry gets its
// own goroutine; there is no adapter-level retry, a failed cycle is logged
// and the next tick or interrupt tries again.
type Scanner struct {
	entries  []Entry
	sink     Sink
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

func NewScanner(sink Sink, logger *zap.Logger) *Scanner {
	return &Scanner{
		sink:   sink,
		logger: logger,
	}
}

// Add registers a scan entry. Must be called before Start.
func (s *Scanner) Add(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// Start launches one scan loop per entry.
func (s *Scanner) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})

	for _, entry := range s.entries {
		s.wg.Add(1)
		go s.scanLoop(entry, s.stopChan)
	}

	s.logger.Info("Scanner started", zap.Int("entries", len(s.entries)))
	return nil
}

// Stop halts all scan loops and waits for them to drain. The scanner can
// be started again afterwards.
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()

	s.logger.Info("Scanner stopped")
}

// IsRunning reports whether the scan loops are active.
func (s *Scanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scanner) scanLoop(entry Entry, stop <-chan struct{}) {
	defer s.wg.Done()

	if entry.Handle != nil {
		notify := entry.Handle.Subscribe()
		for {
			select {
			case <-stop:
				return
			case <-notify:
				s.scanOnce(entry)
			}
		}
	}

	ticker := time.NewTicker(entry.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.scanOnce(entry)
		}
	}
}

func (s *Scanner) scanOnce(entry Entry) {
	if err := entry.Process(); err != nil {
		s.logger.Error("Scan failed",
			zap.String("record", entry.Record),
			zap.Error(err))
	}

	if s.sink != nil {
		s.sink.Publish(entry.Snapshot())
	}
}
