// Package progress holds the pure progress arithmetic behind every dashboard:
// weekly increments, trend and tier classification, cohort aggregation,
// leaderboards and badge evaluation. Nothing in here touches the database.
package progress

// Sample is one student's solved count at a period. Period 1..N are the
// weekly snapshots; the live snapshot is passed separately.
type Sample struct {
	Period      int
	TotalSolved int
}

// Deltas are the increments derived from one student's samples.
type Deltas struct {
	// Values holds the solved count per period 1..N; a missing period is 0.
	Values []int `json:"values"`
	// Weekly holds one increment per adjacent pair of periods.
	Weekly []int `json:"weekly"`
	// Current is live minus the last historical sample.
	Current int `json:"current"`
	// HasLive reports whether a live sample was supplied.
	HasLive bool `json:"hasLive"`
	// Present marks which periods actually had a sample.
	Present []bool `json:"-"`
}

// All returns the weekly increments followed by the current increment when
// a live sample exists.
func (d Deltas) All() []int {
	out := make([]int, 0, len(d.Weekly)+1)
	out = append(out, d.Weekly...)
	if d.HasLive {
		out = append(out, d.Current)
	}
	return out
}

// CurrentIncrement is the figure dashboards rank and classify by: the live
// increment when a live sample exists, otherwise the increment ending at the
// last present weekly sample. Trailing periods with no sample are skipped.
func (d Deltas) CurrentIncrement() int {
	if d.HasLive {
		return d.Current
	}
	for i := len(d.Present) - 1; i >= 1; i-- {
		if d.Present[i] {
			return d.Weekly[i-1]
		}
	}
	return 0
}

// Latest returns the solved count of the live sample, falling back to the
// last present weekly sample.
func (d Deltas) Latest(live *Sample) int {
	if live != nil {
		return live.TotalSolved
	}
	for i := len(d.Values) - 1; i >= 0; i-- {
		if d.Present[i] {
			return d.Values[i]
		}
	}
	return 0
}

// ComputeDeltas derives increments from historical samples and an optional
// live sample. periods fixes how many weekly slots exist; when it is <= 0
// the highest period seen is used. Samples outside 1..periods are ignored
// and a repeated period keeps the last sample given.
//
// An increment touching a missing period is 0. Regressions are reported as
// the negative arithmetic difference.
func ComputeDeltas(samples []Sample, periods int, live *Sample) Deltas {
	if periods <= 0 {
		for _, s := range samples {
			if s.Period > periods {
				periods = s.Period
			}
		}
	}

	d := Deltas{
		Values:  make([]int, periods),
		Present: make([]bool, periods),
		Weekly:  make([]int, 0, max(periods-1, 0)),
		HasLive: live != nil,
	}
	for _, s := range samples {
		if s.Period < 1 || s.Period > periods {
			continue
		}
		d.Values[s.Period-1] = s.TotalSolved
		d.Present[s.Period-1] = true
	}

	for i := 1; i < periods; i++ {
		if !d.Present[i-1] || !d.Present[i] {
			d.Weekly = append(d.Weekly, 0)
			continue
		}
		d.Weekly = append(d.Weekly, d.Values[i]-d.Values[i-1])
	}

	if live != nil {
		for i := periods - 1; i >= 0; i-- {
			if d.Present[i] {
				d.Current = live.TotalSolved - d.Values[i]
				break
			}
		}
	}
	return d
}

// Improvement is the change from the first present weekly sample to the
// latest figure, as an absolute count and as a percentage of the first.
// The percentage is 0 when the first sample is 0 or absent.
func Improvement(d Deltas, latest int) (int, float64) {
	for i, ok := range d.Present {
		if !ok {
			continue
		}
		first := d.Values[i]
		diff := latest - first
		if first == 0 {
			return diff, 0
		}
		return diff, float64(diff) / float64(first) * 100
	}
	return 0, 0
}
