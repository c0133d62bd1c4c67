package enums

// PrintStatus records the outcome of one print attempt in the audit trail.
type PrintStatus string

const (
	PrintStatusSuccess PrintStatus = "SUCCESS"
	PrintStatusFailed  PrintStatus = "FAILED"
)

func (s PrintStatus) Valid() bool {
	switch s {
	case PrintStatusSuccess, PrintStatusFailed:
		return true
	}
	return false
}
