package records

import (
	"fmt"
	"time"

	"github.com/openioc/vmecore/internal/types"
)

// RecordDatabase is the on-disk form of a record database file.
type RecordDatabase struct {
	Database DatabaseInfo       `json:"database"`
	Records  []RecordDefinition `json:"records"`
}

type DatabaseInfo struct {
	ID          string `json:"id"`
	Facility    string `json:"facility,omitempty"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// RecordDefinition describes one record: its kind, its device type, its
// hardware link and how it should be scanned.
type RecordDefinition struct {
	Name    string           `json:"name"`
	Type    types.RecordKind `json:"type"`
	Device  string           `json:"device"`
	Link    types.Link       `json:"link"`
	Scan    ScanDefinition   `json:"scan"`
	NumBits uint             `json:"num_bits,omitempty"`
}

type ScanDefinition struct {
	Mode       ScanMode `json:"mode"`
	IntervalMs int      `json:"interval_ms,omitempty"`
}

func (d ScanDefinition) Spec() ScanSpec {
	return ScanSpec{
		Mode:     d.Mode,
		Interval: time.Duration(d.IntervalMs) * time.Millisecond,
	}
}

// Instantiate builds the runtime record for this definition. The record
// starts Unconfigured; device support binds it.
func (d RecordDefinition) Instantiate() (Record, error) {
	scan := d.Scan.Spec()

	switch d.Type {
	case types.RecordKindBinaryIn:
		return NewBinaryIn(d.Name, d.Link, scan), nil
	case types.RecordKindBinaryOut:
		return NewBinaryOut(d.Name, d.Link, scan), nil
	case types.RecordKindMultiBitIn:
		return NewMultiBitIn(d.Name, d.Link, scan, d.NumBits), nil
	case types.RecordKindMultiBitOut:
		return NewMultiBitOut(d.Name, d.Link, scan, d.NumBits), nil
	default:
		return nil, fmt.Errorf("unknown record type %q for record %s", d.Type, d.Name)
	}
}
