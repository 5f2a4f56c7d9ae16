// Package hpe1368a carries the call contract to the HPE1368A VME digital
// I/O card driver and an in-memory simulator of a card bank.
//
// The driver owns card enumeration and serializes access to shared card
// registers; callers pass card indices through untouched. All failures are
// reported as *types.DriverError with the driver's opaque status code
// preserved.
package hpe1368a

import (
	"github.com/openioc/vmecore/internal/scan"
)

// Driver is the fixed three-call contract device support consumes.
type Driver interface {
	// BitRead returns the bits selected by mask from the card's input
	// register.
	BitRead(card int, mask uint16) (uint16, error)

	// BitWrite replaces the bits selected by mask in the card's output
	// register with the corresponding bits of value.
	BitWrite(card int, value, mask uint16) error

	// IOScanHandle returns the interrupt-scan registration handle for a
	// card.
	IOScanHandle(card int) (*scan.Handle, error)
}
