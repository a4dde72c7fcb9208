package kernels

import "fmt"

// Status is the per-work-item result code reported by device kernels.
type Status int32

const (
	StatusSuccess Status = iota
	// StatusMaxHistInsufficient is reserved for history bucketing done
	// outside this package. No kernel here reports it.
	StatusMaxHistInsufficient
	StatusInvalidParameter
	StatusSampleFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusMaxHistInsufficient:
		return "MAX_HIST_INSUFFICIENT"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusSampleFailure:
		return "SAMPLE_FAILURE"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}
