package devsup

import (
	"github.com/openioc/vmecore/internal/hpe1368a"
	"github.com/openioc/vmecore/internal/records"
	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/types"
	"go.uber.org/zap"
)

type multiBitInSupport struct {
	driver hpe1368a.Driver
	logger *zap.Logger
}

// InitRecord validates the input link and aligns the record's base mask:
// shift takes the signal number, the mask moves up by that shift. Mask and
// shift stay untouched when the link is not VME I/O.
func (s *multiBitInSupport) InitRecord(r *records.MultiBitIn) error {
	addr, err := r.Link().VME()
	if err != nil {
		s.logger.Error("Illegal INP field for multi-bit input",
			zap.String("record", r.RecordName()),
			zap.String("link_type", string(r.Link().Type)))
		return err
	}

	r.Shift = addr.Signal
	r.Mask <<= addr.Signal
	r.Bind()
	return nil
}

// IOIntInfo delegates to the driver for the card's interrupt-scan handle.
func (s *multiBitInSupport) IOIntInfo(r *records.MultiBitIn) (*scan.Handle, error) {
	addr, err := r.Link().VME()
	if err != nil {
		return nil, err
	}
	return s.driver.IOScanHandle(addr.Card)
}

// Read fetches the record's bit field from the card.
func (s *multiBitInSupport) Read(r *records.MultiBitIn) error {
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

type multiBitOutSupport struct {
	driver hpe1368a.Driver
	logger *zap.Logger
}

// InitRecord validates the output link, aligns mask and shift, and seeds
// desired value and readback from current hardware state. A failed seed
// read is returned as-is; the record is still bound.
func (s *multiBitOutSupport) InitRecord(r *records.MultiBitOut) error {
	addr, err := r.Link().VME()
	if err != nil {
		s.logger.Error("Illegal OUT field for multi-bit output",
			zap.String("record", r.RecordName()),
			zap.String("link_type", string(r.Link().Type)))
		return err
	}

	r.Shift = addr.Signal
	r.Mask <<= addr.Signal
	r.Bind()

	bits, err := s.driver.BitRead(addr.Card, r.Mask)
	if err != nil {
		return err
	}
	r.Seed(bits)
	return nil
}

// Write drives the record's bit field onto the card, then re-reads the
// same mask to refresh the readback. A failed re-read raises a read alarm
// but does not undo the write's success: the readback keeps its previous
// value and the returned status stays nil.
func (s *multiBitOutSupport) Write(r *records.MultiBitOut) error {
	addr, err := r.Link().VME()
	if err != nil {
		return err
	}

	if err := s.driver.BitWrite(addr.Card, r.Desired(), r.Mask); err != nil {
		r.SetAlarm(types.AlarmWrite, types.SeverityInvalid)
		return err
	}

	bits, err := s.driver.BitRead(addr.Card, r.Mask)
	if err != nil {
		r.SetAlarm(types.AlarmRead, types.SeverityInvalid)
		return nil
	}

	r.SetReadback(bits)
	r.ClearAlarm()
	return nil
}
