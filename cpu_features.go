package guda

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// HostFeatures tracks the SIMD extensions of the CPU that executes kernels.
// Vector transactions are plain copies, so these only describe the host; the
// emulated device always moves at most MaxVectorBytes per lane per transaction.
type HostFeatures struct {
	Arch       string
	HasSSE4    bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasNEON    bool // ASIMD
	HasFP16    bool // FPHP and ASIMDHP
	HasSVE     bool
}

// Global CPU feature detection
var hostFeatures HostFeatures

func init() {
	hostFeatures = detectHostFeatures()
}

// detectHostFeatures reads golang.org/x/sys/cpu. The X86 and ARM64 feature
// sets are defined on every architecture and are simply false elsewhere.
func detectHostFeatures() HostFeatures {
	return HostFeatures{
		Arch:       runtime.GOARCH,
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
		HasFP16:    cpu.ARM64.HasFPHP && cpu.ARM64.HasASIMDHP,
		HasSVE:     cpu.ARM64.HasSVE,
	}
}

// GetHostFeatures returns the detected host SIMD features.
func GetHostFeatures() HostFeatures {
	return hostFeatures
}

// SIMDBytes returns the widest native vector register of the host in bytes,
// or 8 when no SIMD extension was detected.
func (f HostFeatures) SIMDBytes() int {
	switch {
	case f.HasAVX512F:
		return 64
	case f.HasAVX2:
		return 32
	case f.HasSSE4, f.HasNEON:
		return 16
	default:
		return 8
	}
}

// String lists the detected features, e.g. "amd64 [SSE4 AVX2 FMA]".
func (f HostFeatures) String() string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	add(f.HasSSE4, "SSE4")
	add(f.HasAVX2, "AVX2")
	add(f.HasFMA, "FMA")
	add(f.HasAVX512F, "AVX512F")
	add(f.HasNEON, "NEON")
	add(f.HasFP16, "FP16")
	add(f.HasSVE, "SVE")

	if len(features) == 0 {
		return f.Arch + " [no SIMD extensions detected]"
	}
	return f.Arch + " [" + strings.Join(features, " ") + "]"
}
