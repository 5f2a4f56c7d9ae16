package devsup

import (
	"github.com/openioc/vmecore/internal/hpe1368a"
	"github.com/openioc/vmecore/internal/records"
	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/types"
	"go.uber.org/zap"
)

type binaryInSupport struct {
	driver hpe1368a.Driver
	logger *zap.Logger
}

// InitRecord validates the input link and derives the record's bit mask
// from the signal number. A non-VME link is a permanent configuration
// error: it is logged once, mask stays untouched and the record remains
// unbound.
func (s *binaryInSupport) InitRecord(r *records.BinaryIn) error {
	addr, err := r.Link().VME()
	if err != nil {
		s.logger.Error("Illegal INP field for binary input",
			zap.String("record", r.RecordName()),
			zap.String("link_type", string(r.Link().Type)))
		return err
	}

	r.Mask = 1 << addr.Signal
	r.Bind()
	return nil
}

// IOIntInfo delegates to the driver for the card's interrupt-scan handle.
func (s *binaryInSupport) IOIntInfo(r *records.BinaryIn) (*scan.Handle, error) {
	addr, err := r.Link().VME()
	if err != nil {
		return nil, err
	}
	return s.driver.IOScanHandle(addr.Card)
}

// Read fetches the record's bit from the card. On success the raw value
// takes the returned bits; on failure a read alarm of invalid severity is
// raised and the driver status is passed through unchanged.
func (s *binaryInSupport) Read(r *records.BinaryIn) error {
	addr, err := r.Link().VME()
	if err != nil {
		return err
	}

	bits, err := s.driver.BitRead(addr.Card, r.Mask)
	if err != nil {
		r.SetAlarm(types.AlarmRead, types.SeverityInvalid)
		return err
	}

	r.SetRaw(bits)
	r.ClearAlarm()
	return nil
}

type binaryOutSupport struct {
	driver hpe1368a.Driver
	logger *zap.Logger
}

// InitRecord validates the output link, derives the mask, and seeds the
// record's desired value and readback from current hardware state so
// operators see real values before the first write. A failed seed read is
// returned as-is; the record is still bound.
func (s *binaryOutSupport) InitRecord(r *records.BinaryOut) error {
	addr, err := r.Link().VME()
	if err != nil {
		s.logger.Error("Illegal OUT field for binary output",
			zap.String("record", r.RecordName()),
			zap.String("link_type", string(r.Link().Type)))
		return err
	}

	r.Mask = 1 << addr.Signal
	r.Bind()

	bits, err := s.driver.BitRead(addr.Card, r.Mask)
	if err != nil {
		return err
	}
	r.Seed(bits)
	return nil
}

// Write drives the record's bit onto the card. Failure raises a write
// alarm of invalid severity and passes the driver status through.
func (s *binaryOutSupport) Write(r *records.BinaryOut) error {
	addr, err := r.Link().VME()
	if err != nil {
		return err
	}

	if err := s.driver.BitWrite(addr.Card, r.Desired(), r.Mask); err != nil {
		r.SetAlarm(types.AlarmWrite, types.SeverityInvalid)
		return err
	}

	r.ClearAlarm()
	return nil
}
