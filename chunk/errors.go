package chunk

import "fmt"

// SegmentationError reports input that is rejected before any generation
// call is made.
type SegmentationError struct {
	Reason string
}

func (e *SegmentationError) Error() string {
	return "segmentation failed: " + e.Reason
}

// GenerationFailure wraps the generation collaborator's error together with
// the index of the failing segment. No partial output accompanies it.
type GenerationFailure struct {
	Segment int
	Err     error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed for segment %d: %v", e.Segment, e.Err)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Err
}

// AggregationError indicates segment and result counts diverged. It signals
// an internal bug, not a caller mistake.
type AggregationError struct {
	Segments int
	Results  int
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation mismatch: %d segments, %d results", e.Segments, e.Results)
}
