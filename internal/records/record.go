package records

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openioc/vmecore/internal/types"
)

// ScanMode selects how an input record is processed.
type ScanMode string

const (
	ScanModePassive  ScanMode = "passive"
	ScanModePeriodic ScanMode = "periodic"
	ScanModeIOInt    ScanMode = "ioint"
)

type ScanSpec struct {
	Mode     ScanMode
	Interval time.Duration
}

// Alarm is the quality flag pair attached to a record value.
type Alarm struct {
	Condition types.AlarmCondition `json:"condition,omitempty"`
	Severity  types.Severity       `json:"severity"`
}

// Status is the externally visible snapshot of a record, served over the
// monitor API.
type Status struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Kind     types.RecordKind `json:"kind"`
	Bound    bool             `json:"bound"`
	Link     types.Link       `json:"link"`
	Mask     uint16           `json:"mask"`
	Shift    uint             `json:"shift,omitempty"`
	NumBits  uint             `json:"num_bits,omitempty"`
	Raw      uint16           `json:"raw"`
	Value    any              `json:"value"`
	Readback *uint16          `json:"readback,omitempty"`
	Alarm    Alarm            `json:"alarm"`
}

// Record is the common view the manager and the monitor surface need.
type Record interface {
	RecordName() string
	RecordID() uuid.UUID
	Kind() types.RecordKind
	Link() types.Link
	Scan() ScanSpec
	Bound() bool
	Status() Status
}

// recordBase holds the state every record kind shares. Link and scan spec
// are immutable after construction; the bound flag flips exactly once at
// initialization and never back.
type recordBase struct {
	id    uuid.UUID
	name  string
	kind  types.RecordKind
	link  types.Link
	scan  ScanSpec
	bound bool

	mu    sync.RWMutex
	alarm Alarm
}

func newRecordBase(name string, kind types.RecordKind, link types.Link, scan ScanSpec) recordBase {
	return recordBase{
		id:    uuid.New(),
		name:  name,
		kind:  kind,
		link:  link,
		scan:  scan,
		alarm: Alarm{Severity: types.SeverityNone},
	}
}

func (b *recordBase) RecordName() string     { return b.name }
func (b *recordBase) RecordID() uuid.UUID    { return b.id }
func (b *recordBase) Kind() types.RecordKind { return b.kind }
func (b *recordBase) Link() types.Link       { return b.link }
func (b *recordBase) Scan() ScanSpec         { return b.scan }
func (b *recordBase) Bound() bool            { return b.bound }

// Bind marks the record as initialized. Bound is terminal; there is no
// re-initialization path.
func (b *recordBase) Bind() { b.bound = true }

// SetAlarm raises an alarm. A new alarm only replaces the current one when
// its severity is strictly higher, so a minor condition never masks an
// invalid one within the same cycle.
func (b *recordBase) SetAlarm(cond types.AlarmCondition, sev types.Severity) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sev.Exceeds(b.alarm.Severity) {
		b.alarm = Alarm{Condition: cond, Severity: sev}
	}
}

// ClearAlarm resets the alarm after a successful cycle.
func (b *recordBase) ClearAlarm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alarm = Alarm{Severity: types.SeverityNone}
}

func (b *recordBase) Alarm() Alarm {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.alarm
}

func (b *recordBase) baseStatus() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Status{
		ID:    b.id,
		Name:  b.name,
		Kind:  b.kind,
		Bound: b.bound,
		Link:  b.link,
		Alarm: b.alarm,
	}
}

// BinaryIn is a single-bit input record. Mask is derived from the link's
// signal number at initialization and read-only afterwards.
type BinaryIn struct {
	recordBase
	Mask uint16

	raw uint16
	val bool
}

func NewBinaryIn(name string, link types.Link, scan ScanSpec) *BinaryIn {
	return &BinaryIn{recordBase: newRecordBase(name, types.RecordKindBinaryIn, link, scan)}
}

// SetRaw stores the bits returned by the driver and derives the boolean
// value: the record is on when its bit is present in the field.
func (r *BinaryIn) SetRaw(bits uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = bits
	r.val = bits != 0
}

func (r *BinaryIn) Raw() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}

func (r *BinaryIn) Value() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.val
}

func (r *BinaryIn) Status() Status {
	s := r.baseStatus()
	s.Mask = r.Mask
	r.mu.RLock()
	s.Raw = r.raw
	s.Value = r.val
	r.mu.RUnlock()
	return s
}

// BinaryOut is a single-bit output record. The desired raw value holds the
// bits to write; the readback mirrors what the hardware last reported.
type BinaryOut struct {
	recordBase
	Mask uint16

	raw uint16
	rbv uint16
}

func NewBinaryOut(name string, link types.Link, scan ScanSpec) *BinaryOut {
	return &BinaryOut{recordBase: newRecordBase(name, types.RecordKindBinaryOut, link, scan)}
}

// SetDesired converts the boolean demand into raw bits under the record's
// mask.
func (r *BinaryOut) SetDesired(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on {
		r.raw = r.Mask
	} else {
		r.raw = 0
	}
}

// Seed loads both the desired value and the readback from hardware state,
// so operators see real values before the first write.
func (r *BinaryOut) Seed(bits uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = bits
	r.rbv = bits
}

func (r *BinaryOut) Desired() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}

func (r *BinaryOut) Readback() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rbv
}

func (r *BinaryOut) Status() Status {
	s := r.baseStatus()
	s.Mask = r.Mask
	r.mu.RLock()
	s.Raw = r.raw
	s.Value = r.raw != 0
	rbv := r.rbv
	r.mu.RUnlock()
	s.Readback = &rbv
	return s
}

// MultiBitIn is a multi-bit input record. NumBits fixes the base mask at
// construction; initialization shifts it into place.
type MultiBitIn struct {
	recordBase
	NumBits uint
	Mask    uint16
	Shift   uint

	raw uint16
	val uint16
}

func NewMultiBitIn(name string, link types.Link, scan ScanSpec, numBits uint) *MultiBitIn {
	return &MultiBitIn{
		recordBase: newRecordBase(name, types.RecordKindMultiBitIn, link, scan),
		NumBits:    numBits,
		Mask:       baseMask(numBits),
	}
}

// SetRaw stores the returned bits and derives the field value by masking
// and aligning them.
func (r *MultiBitIn) SetRaw(bits uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = bits
	r.val = (bits & r.Mask) >> r.Shift
}

func (r *MultiBitIn) Raw() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}

func (r *MultiBitIn) Value() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.val
}

func (r *MultiBitIn) Status() Status {
	s := r.baseStatus()
	s.Mask = r.Mask
	s.Shift = r.Shift
	s.NumBits = r.NumBits
	r.mu.RLock()
	s.Raw = r.raw
	s.Value = r.val
	r.mu.RUnlock()
	return s
}

// MultiBitOut is a multi-bit output record.
type MultiBitOut struct {
	recordBase
	NumBits uint
	Mask    uint16
	Shift   uint

	raw uint16
	rbv uint16
}

func NewMultiBitOut(name string, link types.Link, scan ScanSpec, numBits uint) *MultiBitOut {
	return &MultiBitOut{
		recordBase: newRecordBase(name, types.RecordKindMultiBitOut, link, scan),
		NumBits:    numBits,
		Mask:       baseMask(numBits),
	}
}

// SetDesired aligns the demanded field value under the record's mask.
func (r *MultiBitOut) SetDesired(value uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = (value << r.Shift) & r.Mask
}

// Seed loads desired value and readback from hardware state at
// initialization.
func (r *MultiBitOut) Seed(bits uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = bits
	r.rbv = bits
}

func (r *MultiBitOut) Desired() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}

func (r *MultiBitOut) Readback() uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rbv
}

// SetReadback refreshes the readback after a post-write re-read.
func (r *MultiBitOut) SetReadback(bits uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rbv = bits
}

func (r *MultiBitOut) Status() Status {
	s := r.baseStatus()
	s.Mask = r.Mask
	s.Shift = r.Shift
	s.NumBits = r.NumBits
	r.mu.RLock()
	s.Raw = r.raw
	s.Value = (r.raw & r.Mask) >> r.Shift
	rbv := r.rbv
	r.mu.RUnlock()
	s.Readback = &rbv
	return s
}

func baseMask(numBits uint) uint16 {
	if numBits == 0 || numBits > 16 {
		numBits = 16
	}
	return uint16((uint32(1) << numBits) - 1)
}
