package opt

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize_ is used in structure padding to prevent false sharing.
// It's calculated from the target CPU by the `golang.org/x/sys` package.
const CacheLineSize_ = unsafe.Sizeof(cpu.CacheLinePad{})

// PadInt64_ is the padding that keeps a lone 64-bit hot word on its own
// cache line.
const PadInt64_ = (CacheLineSize_ - 8%CacheLineSize_) % CacheLineSize_
