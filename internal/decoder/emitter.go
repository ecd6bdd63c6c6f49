package decoder

import "github.com/retroenv/nanddecode/internal/results"

type emitter struct {
	sink Sink
}

// emit records a frame and reports progress at its end. Frames with start >= end are
// dropped, they result from the sampling granularity and carry no information.
func (e *emitter) emit(kind results.Kind, start, end uint64, payload byte) bool {
	if start >= end {
		return false
	}

	e.sink.AddFrame(results.Frame{
		Kind:    kind,
		Start:   start,
		End:     end,
		Payload: payload,
	})
	e.sink.ReportProgress(end)
	return true
}
