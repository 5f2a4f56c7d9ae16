// Package devsup binds records to card drivers. For each record kind it
// exposes the operation set the I/O core invokes: initialization (validate
// the link, derive mask/shift), interrupt-scan registration for input
// kinds, and the per-scan read or write.
package devsup

import (
	"sync"

	"github.com/openioc/vmecore/internal/records"
	"github.com/openioc/vmecore/internal/scan"
)

// BinaryInSupport is the operation set for single-bit input records.
type BinaryInSupport interface {
	InitRecord(*records.BinaryIn) error
	IOIntInfo(*records.BinaryIn) (*scan.Handle, error)
	Read(*records.BinaryIn) error
}

// BinaryOutSupport is the operation set for single-bit output records.
// Output kinds have no interrupt-scan slot.
type BinaryOutSupport interface {
	InitRecord(*records.BinaryOut) error
	Write(*records.BinaryOut) error
}

// MultiBitInSupport is the operation set for multi-bit input records.
type MultiBitInSupport interface {
	InitRecord(*records.MultiBitIn) error
	IOIntInfo(*records.MultiBitIn) (*scan.Handle, error)
	Read(*records.MultiBitIn) error
}

// MultiBitOutSupport is the operation set for multi-bit output records.
type MultiBitOutSupport interface {
	InitRecord(*records.MultiBitOut) error
	Write(*records.MultiBitOut) error
}

// SupportSet groups the four per-kind supports of one device type.
type SupportSet struct {
	BinaryIn    BinaryInSupport
	BinaryOut   BinaryOutSupport
	MultiBitIn  MultiBitInSupport
	MultiBitOut MultiBitOutSupport
}

// Registry maps device type names to their support sets. Device types are
// registered once at startup and looked up when records are loaded.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]SupportSet
}

func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]SupportSet)}
}

func (r *Registry) Register(deviceType string, set SupportSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[deviceType] = set
}

func (r *Registry) Lookup(deviceType string) (SupportSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[deviceType]
	return set, ok
}
