package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/openioc/vmecore/internal/types"
)

// UpdateRow is one archived record update.
type UpdateRow struct {
	ID         uuid.UUID            `json:"id"`
	RecordName string               `json:"record_name"`
	RecordKind types.RecordKind     `json:"record_kind"`
	Value      any                  `json:"value"`
	RawValue   uint16               `json:"raw_value"`
	Condition  types.AlarmCondition `json:"condition"`
	Severity   types.Severity       `json:"severity"`
	RecordedAt time.Time            `json:"recorded_at"`
}
