package guda

import (
	"runtime"
	"testing"
)

func TestOperationTolerance(t *testing.T) {
	t.Logf("Running on %s", runtime.GOARCH)

	expand := GetOperationTolerance("expand")
	if IsARM64() && expand.ULPTol < 16 {
		t.Errorf("ARM64 expand ULPTol = %d, want >= 16", expand.ULPTol)
	}
	if !expand.CheckNaN || !expand.CheckInf {
		t.Error("overrides dropped the NaN/Inf flags")
	}

	loglik := GetOperationTolerance("loglik")
	if loglik.RelTol < expand.RelTol {
		t.Errorf("reduction tolerance %e tighter than elementwise %e", loglik.RelTol, expand.RelTol)
	}
	if got := GetOperationTolerance("unknown"); got != DefaultTolerance() {
		t.Errorf("unknown operation got %+v", got)
	}
}

func TestToleranceMerging(t *testing.T) {
	base := ToleranceConfig{AbsTol: 1e-7, RelTol: 1e-6, ULPTol: 2, CheckNaN: true}
	override := ToleranceConfig{RelTol: 1e-4, ULPTol: 16}

	got := mergeTolerances(base, override)
	want := ToleranceConfig{AbsTol: 1e-7, RelTol: 1e-4, ULPTol: 16, CheckNaN: true}
	if got != want {
		t.Errorf("mergeTolerances() = %+v, want %+v", got, want)
	}
}

func TestGetArchToleranceSelectsOverride(t *testing.T) {
	override := &ToleranceConfig{ULPTol: 99}
	cfg := ArchToleranceConfig{
		Base:    DefaultTolerance(),
		AMD64:   override,
		ARM64:   override,
		Generic: override,
	}
	if got := GetArchTolerance(cfg).ULPTol; got != 99 {
		t.Errorf("ULPTol = %d, want 99", got)
	}
	if got := GetArchTolerance(ArchToleranceConfig{Base: DefaultTolerance()}); got != DefaultTolerance() {
		t.Errorf("no overrides changed the base: %+v", got)
	}
}
