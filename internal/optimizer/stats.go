package optimizer

// Stats tracks aggregate counters and byte totals across a batch.
type Stats struct {
	Sources          int // Distinct sources with at least one result.
	Primary          int
	WebP             int
	Retargeted       int
	FailedVisual     int
	TotalInputBytes  int64 // Sum of OriginalSize over primary results.
	TotalOutputBytes int64 // Sum of OptimizedSize over primary results.
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs
// of the primary results. Browser-specific siblings are extra files and do
// not count.
func (s *Stats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// Summarize folds results into Stats.
func Summarize[T any](results []Result[T]) Stats {
	var s Stats
	sources := make(map[string]bool)
	for _, r := range results {
		sources[r.OriginalFile] = true
		if r.FailedAutomatedTest {
			s.FailedVisual++
		}
		if r.BrowserSpecific {
			s.WebP++
			continue
		}
		s.Primary++
		if r.FileTypeChanged {
			s.Retargeted++
		}
		s.TotalInputBytes += r.OriginalSize
		s.TotalOutputBytes += r.OptimizedSize
	}
	s.Sources = len(sources)
	return s
}
