package engine

import "github.com/ANUcybernetics/trajectory-tracer/pkg/domain"

// Decision is the verdict of the CycleDetector for one observed output.
// The zero value means "continue".
type Decision struct {
	Stop   bool
	Reason domain.StopReason
}

// CycleDetector remembers every output hash seen in one Run and decides
// when the Run has entered a loop or exhausted its length.
//
// One instance belongs to exactly one Run. Never share across runs.
type CycleDetector struct {
	maxLength int
	firstSeen map[string]int
}

func NewCycleDetector(maxLength int) *CycleDetector {
	return &CycleDetector{
		maxLength: maxLength,
		firstSeen: map[string]int{},
	}
}

// Observe records the output hash of the invocation at sequenceNumber.
//
// A hash seen before stops the run as a duplicate, with loop length
// the distance back to its first occurrence. This matches cycles of any
// period, not only immediate repetition. A duplicate found at the final
// allowed step wins over length exhaustion.
func (d *CycleDetector) Observe(sequenceNumber int, outputHash string) Decision {
	if first, ok := d.firstSeen[outputHash]; ok {
		return Decision{
			Stop: true,
			Reason: domain.StopReason{
				Kind:       domain.StopDuplicate,
				LoopLength: sequenceNumber - first,
			},
		}
	}

	d.firstSeen[outputHash] = sequenceNumber

	if sequenceNumber == d.maxLength-1 {
		return Decision{
			Stop:   true,
			Reason: domain.StopReason{Kind: domain.StopLengthExhausted},
		}
	}
	return Decision{}
}
