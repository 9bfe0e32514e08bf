package segment

import (
	"fmt"
)

// RemainderPolicy decides what happens to the segments left over when the
// segment count is not a multiple of the output count.
type RemainderPolicy string

const (
	// RemainderLast appends leftover segments to the last output.
	RemainderLast RemainderPolicy = "last"
	// RemainderDrop discards leftover segments.
	RemainderDrop RemainderPolicy = "drop"
)

func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch p := RemainderPolicy(s); p {
	case RemainderLast, RemainderDrop:
		return p, nil
	case "":
		return RemainderLast, nil
	default:
		return "", fmt.Errorf("unknown remainder policy %q", s)
	}
}

// Range is a half-open [From, To) slice of the segment list.
type Range struct {
	From int
	To   int
}

func (r Range) Len() int { return r.To - r.From }

// Partition splits n ordered segments into outputs contiguous groups of
// floor(n/outputs) segments each, in order, without interleaving.
func Partition(n, outputs int, policy RemainderPolicy) ([]Range, error) {
	if outputs < 1 {
		return nil, fmt.Errorf("partition: need at least one output, got %d", outputs)
	}
	if n < outputs {
		return nil, fmt.Errorf("%w: %d segments for %d outputs", ErrTooFewSegments, n, outputs)
	}

	per := n / outputs
	ranges := make([]Range, outputs)
	for k := range ranges {
		ranges[k] = Range{From: k * per, To: (k + 1) * per}
	}
	if policy == RemainderLast {
		ranges[outputs-1].To = n
	}
	return ranges, nil
}
