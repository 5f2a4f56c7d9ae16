package devsup

import (
	"github.com/openioc/vmecore/internal/hpe1368a"
	"go.uber.org/zap"
)

// NewHPE1368A builds the support set for the HPE1368A digital I/O card
// family on top of its three-call driver contract.
func NewHPE1368A(driver hpe1368a.Driver, logger *zap.Logger) SupportSet {
	return SupportSet{
		BinaryIn:    &binaryInSupport{driver: driver, logger: logger},
		BinaryOut:   &binaryOutSupport{driver: driver, logger: logger},
		MultiBitIn:  &multiBitInSupport{driver: driver, logger: logger},
		MultiBitOut: &multiBitOutSupport{driver: driver, logger: logger},
	}
}
