package progress

// Trend is the direction of a student's current increment.
type Trend string

const (
	TrendImproved  Trend = "improved"
	TrendDeclined  Trend = "declined"
	TrendUnchanged Trend = "unchanged"
)

// ClassifyTrend maps an increment to its trend.
func ClassifyTrend(increment int) Trend {
	switch {
	case increment > 0:
		return TrendImproved
	case increment < 0:
		return TrendDeclined
	default:
		return TrendUnchanged
	}
}

// Tier is the qualitative status shown next to a student.
type Tier string

const (
	TierExcellent       Tier = "Excellent"
	TierGood            Tier = "Good"
	TierActive          Tier = "Active"
	TierUnderperforming Tier = "Underperforming"
)

// Thresholds are the lower bounds (inclusive) of each tier on the weekly
// progress figure.
type Thresholds struct {
	Excellent float64
	Good      float64
	Active    float64
}

// DefaultThresholds returns the stock tier bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 35, Good: 25, Active: 15}
}

// Tier maps a weekly progress figure to a tier. NaN falls through to
// Underperforming.
func (t Thresholds) Tier(weeklyProgress float64) Tier {
	switch {
	case weeklyProgress >= t.Excellent:
		return TierExcellent
	case weeklyProgress >= t.Good:
		return TierGood
	case weeklyProgress >= t.Active:
		return TierActive
	default:
		return TierUnderperforming
	}
}

// Classification is the trend and tier of one student.
type Classification struct {
	Trend Trend `json:"trend"`
	Tier  Tier  `json:"status"`
}

// Classify tags a student by their current increment.
func (t Thresholds) Classify(currentIncrement int) Classification {
	return Classification{
		Trend: ClassifyTrend(currentIncrement),
		Tier:  t.Tier(float64(currentIncrement)),
	}
}
