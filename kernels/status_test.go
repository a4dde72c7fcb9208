package kernels

import "testing"

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		s    Status
		code int32
		name string
	}{
		{StatusSuccess, 0, "SUCCESS"},
		{StatusMaxHistInsufficient, 1, "MAX_HIST_INSUFFICIENT"},
		{StatusInvalidParameter, 2, "INVALID_PARAMETER"},
		{StatusSampleFailure, 3, "SAMPLE_FAILURE"},
		{Status(9), 9, "Status(9)"},
	}
	for _, tt := range tests {
		if int32(tt.s) != tt.code || tt.s.String() != tt.name {
			t.Errorf("got (%d, %q), want (%d, %q)", int32(tt.s), tt.s, tt.code, tt.name)
		}
	}
}
