package guda

import (
	"runtime"
)

// ArchToleranceConfig holds a tolerance and its per-architecture overrides.
type ArchToleranceConfig struct {
	Base ToleranceConfig

	AMD64   *ToleranceConfig
	ARM64   *ToleranceConfig
	Generic *ToleranceConfig
}

// GetArchTolerance returns the tolerance for the running architecture.
func GetArchTolerance(config ArchToleranceConfig) ToleranceConfig {
	base := config.Base

	switch runtime.GOARCH {
	case "amd64":
		if config.AMD64 != nil {
			return mergeTolerances(base, *config.AMD64)
		}
	case "arm64", "arm64be":
		if config.ARM64 != nil {
			return mergeTolerances(base, *config.ARM64)
		}
	default:
		if config.Generic != nil {
			return mergeTolerances(base, *config.Generic)
		}
	}

	return base
}

// mergeTolerances applies the non-zero fields of override to base.
func mergeTolerances(base, override ToleranceConfig) ToleranceConfig {
	result := base
	if override.AbsTol > 0 {
		result.AbsTol = override.AbsTol
	}
	if override.RelTol > 0 {
		result.RelTol = override.RelTol
	}
	if override.ULPTol > 0 {
		result.ULPTol = override.ULPTol
	}
	return result
}

// InterpArchTolerance covers kernels that exponentiate and blend two knot
// values per element.
var InterpArchTolerance = ArchToleranceConfig{
	Base: ToleranceConfig{
		AbsTol:   1e-12,
		RelTol:   1e-12,
		ULPTol:   8,
		CheckNaN: true,
		CheckInf: true,
	},
	ARM64: &ToleranceConfig{
		// FMA contraction changes the last bits of a*(1-f)+b*f
		ULPTol: 16,
	},
}

// ReduceArchTolerance covers block reductions, whose summation order
// differs from a sequential host loop.
var ReduceArchTolerance = ArchToleranceConfig{
	Base: ToleranceConfig{
		AbsTol:   1e-9,
		RelTol:   1e-9,
		ULPTol:   64,
		CheckNaN: true,
		CheckInf: true,
	},
	Generic: &ToleranceConfig{
		AbsTol: 1e-8,
		RelTol: 1e-8,
	},
}

// GetOperationTolerance returns the tolerance for comparing a kernel's
// output with a host computation.
func GetOperationTolerance(operation string) ToleranceConfig {
	switch operation {
	case "expand", "modulate":
		return GetArchTolerance(InterpArchTolerance)
	case "reduce_sum", "loglik":
		return GetArchTolerance(ReduceArchTolerance)
	default:
		return DefaultTolerance()
	}
}

// IsARM64 reports whether the process runs on ARM64.
func IsARM64() bool {
	return runtime.GOARCH == "arm64" || runtime.GOARCH == "arm64be"
}
