package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkVME(t *testing.T) {
	t.Parallel()

	t.Run("returns the address for a vme_io link", func(t *testing.T) {
		t.Parallel()
		link := Link{Type: LinkTypeVME, Card: 2, Signal: 3}

		addr, err := link.VME()
		require.NoError(t, err)
		assert.Equal(t, VMEAddress{Card: 2, Signal: 3}, addr)
	})

	t.Run("rejects every other link kind", func(t *testing.T) {
		t.Parallel()
		for _, lt := range []LinkType{LinkTypeConst, LinkTypePV, LinkTypeInstrument, ""} {
			link := Link{Type: lt, Card: 2, Signal: 3}

			_, err := link.VME()
			assert.ErrorIs(t, err, ErrBadField, "link type %q", lt)
		}
	})
}

func TestDriverStatus(t *testing.T) {
	t.Parallel()

	err := &DriverError{Op: "bit read", Card: 2, Code: 0x21}
	assert.Equal(t, 0x21, DriverStatus(err))
	assert.Equal(t, 0x21, DriverStatus(fmt.Errorf("scan: %w", err)))

	assert.Zero(t, DriverStatus(nil))
	assert.Zero(t, DriverStatus(errors.New("other")))
}

func TestSeverityExceeds(t *testing.T) {
	t.Parallel()

	assert.True(t, SeverityInvalid.Exceeds(SeverityNone))
	assert.True(t, SeverityMajor.Exceeds(SeverityMinor))
	assert.False(t, SeverityMinor.Exceeds(SeverityInvalid))
	assert.False(t, SeverityNone.Exceeds(SeverityNone))
}
