package types

// RecordKind identifies one of the supported record types.
type RecordKind string

const (
	RecordKindBinaryIn    RecordKind = "bi"
	RecordKindBinaryOut   RecordKind = "bo"
	RecordKindMultiBitIn  RecordKind = "mbbi"
	RecordKindMultiBitOut RecordKind = "mbbo"
)

// Severity is the quality flag attached to a record's current value.
type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityMinor   Severity = "minor"
	SeverityMajor   Severity = "major"
	SeverityInvalid Severity = "invalid"
)

// rank orders severities so that raising an alarm never lowers one
// already present.
func (s Severity) rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityMajor:
		return 2
	case SeverityInvalid:
		return 3
	default:
		return 0
	}
}

// Exceeds reports whether s is strictly more severe than other.
func (s Severity) Exceeds(other Severity) bool {
	return s.rank() > other.rank()
}

// AlarmCondition names the operation that degraded a record's value.
type AlarmCondition string

const (
	AlarmNone  AlarmCondition = ""
	AlarmRead  AlarmCondition = "read"
	AlarmWrite AlarmCondition = "write"
)
