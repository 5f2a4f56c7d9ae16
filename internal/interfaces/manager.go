package interfaces

import "github.com/openioc/vmecore/internal/records"

// RecordManager is the view of the record manager the API surface
// consumes.
type RecordManager interface {
	// Records returns snapshots of all loaded records.
	Records() []records.Status

	// Record returns the snapshot of one record by name.
	Record(name string) (records.Status, bool)

	// WriteBinary processes a binary output record with a new demand.
	WriteBinary(name string, on bool) error

	// WriteMultiBit processes a multi-bit output record with a new demand.
	WriteMultiBit(name string, value uint16) error
}
