package devsup

import (
	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/types"
)

// fakeDriver is a scriptable driver that records every call, for asserting
// what device support forwards and what it never calls.
type fakeDriver struct {
	readBits  uint16
	readErr   error
	writeErr  error
	handle    *scan.Handle
	handleErr error

	reads   int
	writes  int
	ioscans int

	lastReadCard  int
	lastReadMask  uint16
	lastWriteCard int
	lastWriteVal  uint16
	lastWriteMask uint16
}

func (f *fakeDriver) BitRead(card int, mask uint16) (uint16, error) {
	f.reads++
	f.lastReadCard = card
	f.lastReadMask = mask
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.readBits & mask, nil
}

func (f *fakeDriver) BitWrite(card int, value, mask uint16) error {
	f.writes++
	f.lastWriteCard = card
	f.lastWriteVal = value
	f.lastWriteMask = mask
	return f.writeErr
}

func (f *fakeDriver) IOScanHandle(card int) (*scan.Handle, error) {
	f.ioscans++
	if f.handleErr != nil {
		return nil, f.handleErr
	}
	if f.handle == nil {
		f.handle = scan.NewHandle()
	}
	return f.handle, nil
}

func vmeLink(card int, signal uint) types.Link {
	return types.Link{Type: types.LinkTypeVME, Card: card, Signal: signal}
}

func pvLink() types.Link {
	return types.Link{Type: types.LinkTypePV}
}
