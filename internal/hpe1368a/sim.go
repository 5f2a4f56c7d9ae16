package hpe1368a

import (
	"sync"

	"github.com/openioc/vmecore/internal/scan"
	"github.com/openioc/vmecore/internal/types"
)

// Simulator status codes. Nonzero codes are opaque to callers, the values
// only matter for matching against what the driver reported.
const (
	CodeBadCard    = 0x11
	CodeReadFault  = 0x21
	CodeWriteFault = 0x22
)

// Sim is an in-memory bank of 16-bit digital I/O cards. It stands in for
// the VME hardware in tests and demo deployments: writes merge bits under
// a mask and fire the card's interrupt-scan handle, reads return the
// masked register. Fault injection hooks let tests exercise the failure
// paths.
type Sim struct {
	mu      sync.Mutex
	cards   []uint16
	handles map[int]*scan.Handle

	failReadCode  int
	failWriteCode int
}

func NewSim(numCards int) *Sim {
	return &Sim{
		cards:   make([]uint16, numCards),
		handles: make(map[int]*scan.Handle),
	}
}

func (s *Sim) BitRead(card int, mask uint16) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if card < 0 || card >= len(s.cards) {
		return 0, &types.DriverError{Op: "bit read", Card: card, Code: CodeBadCard}
	}
	if s.failReadCode != 0 {
		code := s.failReadCode
		s.failReadCode = 0
		return 0, &types.DriverError{Op: "bit read", Card: card, Code: code}
	}

	return s.cards[card] & mask, nil
}

func (s *Sim) BitWrite(card int, value, mask uint16) error {
	s.mu.Lock()

	if card < 0 || card >= len(s.cards) {
		s.mu.Unlock()
		return &types.DriverError{Op: "bit write", Card: card, Code: CodeBadCard}
	}
	if s.failWriteCode != 0 {
		code := s.failWriteCode
		s.failWriteCode = 0
		s.mu.Unlock()
		return &types.DriverError{Op: "bit write", Card: card, Code: code}
	}

	s.cards[card] = (s.cards[card] &^ mask) | (value & mask)
	handle := s.handles[card]
	s.mu.Unlock()

	if handle != nil {
		handle.Trigger()
	}
	return nil
}

func (s *Sim) IOScanHandle(card int) (*scan.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if card < 0 || card >= len(s.cards) {
		return nil, &types.DriverError{Op: "ioscan", Card: card, Code: CodeBadCard}
	}

	handle, ok := s.handles[card]
	if !ok {
		handle = scan.NewHandle()
		s.handles[card] = handle
	}
	return handle, nil
}

// SetInput forces one input bit, the way a field contact closing would,
// and fires the card's interrupt handle.
func (s *Sim) SetInput(card int, signal uint, on bool) error {
	s.mu.Lock()

	if card < 0 || card >= len(s.cards) {
		s.mu.Unlock()
		return &types.DriverError{Op: "set input", Card: card, Code: CodeBadCard}
	}

	bit := uint16(1) << signal
	if on {
		s.cards[card] |= bit
	} else {
		s.cards[card] &^= bit
	}
	handle := s.handles[card]
	s.mu.Unlock()

	if handle != nil {
		handle.Trigger()
	}
	return nil
}

// Register returns the full register of a card. Test helper.
func (s *Sim) Register(card int) uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card < 0 || card >= len(s.cards) {
		return 0
	}
	return s.cards[card]
}

// FailNextRead makes the next BitRead fail once with the given code.
func (s *Sim) FailNextRead(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReadCode = code
}

// FailNextWrite makes the next BitWrite fail once with the given code.
func (s *Sim) FailNextWrite(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWriteCode = code
}
