package ioc

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/openioc/vmecore/internal/devsup"
	"github.com/openioc/vmecore/internal/records"
	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/types"
	"go.uber.org/zap"
)

type recordEntry struct {
	rec records.Record
	set devsup.SupportSet
}

// Manager loads record databases, binds every record through its device
// support, and owns the scanner driving the input records. A record whose
// initialization fails stays loaded but unbound: it is visible, never
// scanned, and never accepts writes.
type Manager struct {
	loader          *records.Loader
	registry        *devsup.Registry
	scanner         *scan.Scanner
	sink            scan.Sink
	defaultInterval time.Duration
	logger          *zap.Logger

	mu      sync.RWMutex
	entries map[string]*recordEntry
}

func NewManager(
	searchPaths []string,
	registry *devsup.Registry,
	sink scan.Sink,
	defaultInterval time.Duration,
	logger *zap.Logger,
) (*Manager, error) {
	loader, err := records.NewLoader(searchPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create record loader: %w", err)
	}

	return &Manager{
		loader:          loader,
		registry:        registry,
		scanner:         scan.NewScanner(sink, logger),
		sink:            sink,
		defaultInterval: defaultInterval,
		logger:          logger,
		entries:         make(map[string]*recordEntry),
	}, nil
}

// LoadDatabase loads one record database and binds its records. A record
// that fails to bind is logged and kept; loading continues with the next
// record.
func (m *Manager) LoadDatabase(databaseName string) error {
	db, err := m.loader.Load(databaseName)
	if err != nil {
		return fmt.Errorf("failed to load record database %s: %w", databaseName, err)
	}

	for _, def := range db.Records {
		if err := m.loadRecord(def); err != nil {
			m.logger.Error("Record load failed",
				zap.String("database", databaseName),
				zap.String("record", def.Name),
				zap.Error(err))
		}
	}

	m.logger.Info("Record database loaded",
		zap.String("database", databaseName),
		zap.String("version", db.Database.Version),
		zap.Int("records", len(db.Records)))

	return nil
}

func (m *Manager) loadRecord(def records.RecordDefinition) error {
	set, ok := m.registry.Lookup(def.Device)
	if !ok {
		return fmt.Errorf("no device support registered for %q", def.Device)
	}

	rec, err := def.Instantiate()
	if err != nil {
		return err
	}

	m.mu.Lock()
	if _, exists := m.entries[def.Name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("duplicate record name %q", def.Name)
	}
	m.entries[def.Name] = &recordEntry{rec: rec, set: set}
	m.mu.Unlock()

	// Bind the record. Initialization failure leaves it loaded but
	// unbound; the driver may also report a seed-read failure on output
	// kinds, in which case the record is bound and the failure only
	// logged.
	switch r := rec.(type) {
	case *records.BinaryIn:
		if err := set.BinaryIn.InitRecord(r); err != nil {
			return err
		}
		return m.scheduleBinaryIn(r, set)
	case *records.BinaryOut:
		return set.BinaryOut.InitRecord(r)
	case *records.MultiBitIn:
		if err := set.MultiBitIn.InitRecord(r); err != nil {
			return err
		}
		return m.scheduleMultiBitIn(r, set)
	case *records.MultiBitOut:
		return set.MultiBitOut.InitRecord(r)
	default:
		return fmt.Errorf("unsupported record kind %q", rec.Kind())
	}
}

func (m *Manager) scheduleBinaryIn(r *records.BinaryIn, set devsup.SupportSet) error {
	entry := scan.Entry{
		Record:   r.RecordName(),
		Process:  func() error { return set.BinaryIn.Read(r) },
		Snapshot: func() scan.Update { return statusToUpdate(r.Status()) },
	}
	return m.schedule(r, &entry, func() (*scan.Handle, error) { return set.BinaryIn.IOIntInfo(r) })
}

func (m *Manager) scheduleMultiBitIn(r *records.MultiBitIn, set devsup.SupportSet) error {
	entry := scan.Entry{
		Record:   r.RecordName(),
		Process:  func() error { return set.MultiBitIn.Read(r) },
		Snapshot: func() scan.Update { return statusToUpdate(r.Status()) },
	}
	return m.schedule(r, &entry, func() (*scan.Handle, error) { return set.MultiBitIn.IOIntInfo(r) })
}

func (m *Manager) schedule(rec records.Record, entry *scan.Entry, ioint func() (*scan.Handle, error)) error {
	switch rec.Scan().Mode {
	case records.ScanModePeriodic:
		entry.Interval = rec.Scan().Interval
		if entry.Interval <= 0 {
			entry.Interval = m.defaultInterval
		}
	case records.ScanModeIOInt:
		handle, err := ioint()
		if err != nil {
			return fmt.Errorf("failed to get interrupt scan handle for %s: %w", rec.RecordName(), err)
		}
		entry.Handle = handle
	default:
		// Passive records are processed on demand only.
		return nil
	}

	m.scanner.Add(*entry)
	return nil
}

// StartScanning launches the scan loops for all scheduled input records.
func (m *Manager) StartScanning() error {
	return m.scanner.Start()
}

// StopScanning halts all scan loops.
func (m *Manager) StopScanning() {
	m.scanner.Stop()
}

// Records returns snapshots of all loaded records, sorted by name.
func (m *Manager) Records() []records.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]records.Status, 0, len(m.entries))
	for _, entry := range m.entries {
		statuses = append(statuses, entry.rec.Status())
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	return statuses
}

// Record returns the snapshot of one record by name.
func (m *Manager) Record(name string) (records.Status, bool) {
	m.mu.RLock()
	entry, ok := m.entries[name]
	m.mu.RUnlock()

	if !ok {
		return records.Status{}, false
	}
	return entry.rec.Status(), true
}

// WriteBinary processes a binary output record with a new demand.
func (m *Manager) WriteBinary(name string, on bool) error {
	entry, err := m.outputEntry(name)
	if err != nil {
		return err
	}

	r, ok := entry.rec.(*records.BinaryOut)
	if !ok {
		return fmt.Errorf("record %s: %w", name, types.ErrNotOutput)
	}

	r.SetDesired(on)
	werr := entry.set.BinaryOut.Write(r)
	m.publish(r.Status())
	return werr
}

// WriteMultiBit processes a multi-bit output record with a new demand.
func (m *Manager) WriteMultiBit(name string, value uint16) error {
	entry, err := m.outputEntry(name)
	if err != nil {
		return err
	}

	r, ok := entry.rec.(*records.MultiBitOut)
	if !ok {
		return fmt.Errorf("record %s: %w", name, types.ErrNotOutput)
	}

	r.SetDesired(value)
	werr := entry.set.MultiBitOut.Write(r)
	m.publish(r.Status())
	return werr
}

func (m *Manager) outputEntry(name string) (*recordEntry, error) {
	m.mu.RLock()
	entry, ok := m.entries[name]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("record %s: %w", name, types.ErrRecordNotFound)
	}
	if !entry.rec.Bound() {
		return nil, fmt.Errorf("record %s: %w", name, types.ErrNotBound)
	}
	return entry, nil
}

func (m *Manager) publish(s records.Status) {
	if m.sink != nil {
		m.sink.Publish(statusToUpdate(s))
	}
}

func statusToUpdate(s records.Status) scan.Update {
	return scan.Update{
		Record:    s.Name,
		Kind:      s.Kind,
		Value:     s.Value,
		Raw:       s.Raw,
		Condition: s.Alarm.Condition,
		Severity:  s.Alarm.Severity,
	}
}
