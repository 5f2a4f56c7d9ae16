package types

import "fmt"

// LinkType identifies how a record is wired to its data source.
type LinkType string

const (
	LinkTypeVME        LinkType = "vme_io"
	LinkTypeConst      LinkType = "const_link"
	LinkTypePV         LinkType = "pv_link"
	LinkTypeInstrument LinkType = "instrument_io"
)

// VMEAddress is the address payload of a vme_io link: a card index and a
// bit position within that card's digital I/O register.
type VMEAddress struct {
	Card   int  `json:"card"`
	Signal uint `json:"signal"`
}

// Link is a tagged record link. Only the vme_io variant carries a usable
// address; the accessor below enforces the tag check.
type Link struct {
	Type   LinkType `json:"type"`
	Card   int      `json:"card"`
	Signal uint     `json:"signal"`
}

// VME returns the link's VME address. It fails with ErrBadField when the
// link is not configured for VME I/O, so callers never read the address
// payload of a foreign link kind.
func (l Link) VME() (VMEAddress, error) {
	if l.Type != LinkTypeVME {
		return VMEAddress{}, fmt.Errorf("link type %q is not %q: %w", l.Type, LinkTypeVME, ErrBadField)
	}
	return VMEAddress{Card: l.Card, Signal: l.Signal}, nil
}
