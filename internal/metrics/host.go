package metrics

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// Host describes the CPU a run executes on. Matrix throughput depends on
// the vector extensions it reports.
type Host struct {
	Brand         string
	PhysicalCores int
	LogicalCores  int
	AVX2          bool
	FMA3          bool
}

// DetectHost reads the CPU capabilities of the current machine.
func DetectHost() Host {
	return Host{
		Brand:         cpuid.CPU.BrandName,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
		AVX2:          cpuid.CPU.Supports(cpuid.AVX2),
		FMA3:          cpuid.CPU.Supports(cpuid.FMA3),
	}
}

// Vectorized reports whether the host has the fused vector units used by
// the assembly kernels behind matrix products.
func (h Host) Vectorized() bool {
	return h.AVX2 && h.FMA3
}

func (h Host) String() string {
	return fmt.Sprintf("cpu=%q physical_cores=%d logical_cores=%d avx2=%t fma3=%t",
		h.Brand, h.PhysicalCores, h.LogicalCores, h.AVX2, h.FMA3)
}
