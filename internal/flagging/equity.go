package flagging

import (
	"math"
	"sort"

	"accelerator-portal/internal/models"
)

const (
	minFounderTotal     = 70.0
	minSoloFounderTotal = 80.0
	maxInvestors        = 5
	maxTwoFounderGap    = 20.0
	maxAdjacentGap      = 15.0
	sumTolerance        = 0.1
)

// EquitySummary is the grouped view of a cap table. Total rows are ignored.
type EquitySummary struct {
	Founders      []float64
	FounderTotal  float64
	InvestorCount int
	GrandTotal    float64
}

// SummarizeEquity groups rows by category.
func SummarizeEquity(rows []models.EquityRow) EquitySummary {
	var s EquitySummary
	for _, r := range rows {
		switch r.Category {
		case models.EquityTotal, models.EquityGrandTotal:
			continue
		case models.EquityFounder:
			s.Founders = append(s.Founders, r.Percentage)
			s.FounderTotal += r.Percentage
		case models.EquityInvestor:
			s.InvestorCount++
		}
		s.GrandTotal += r.Percentage
	}
	return s
}

// CheckEquity validates a cap table. Each rule contributes at most one yellow flag and
// all rules run, except that an empty breakdown stops after its own flag.
func CheckEquity(rows []models.EquityRow) []models.Flag {
	s := SummarizeEquity(rows)
	if onlyTotals(rows) {
		return []models.Flag{yellow(FieldEquity, "no equity breakdown provided")}
	}

	var flags []models.Flag

	if s.FounderTotal < minFounderTotal {
		flags = append(flags, yellowf(FieldEquity, "founders hold %.1f%%, below %.0f%%", s.FounderTotal, minFounderTotal))
	}

	if len(s.Founders) == 1 && s.FounderTotal < minSoloFounderTotal {
		flags = append(flags, yellowf(FieldEquity, "solo founder holds %.1f%%, below %.0f%%", s.FounderTotal, minSoloFounderTotal))
	}

	if s.InvestorCount > maxInvestors {
		flags = append(flags, yellowf(FieldEquity, "%d investors on the cap table, more than %d", s.InvestorCount, maxInvestors))
	}

	founders := append([]float64(nil), s.Founders...)
	sort.Sort(sort.Reverse(sort.Float64Slice(founders)))

	switch {
	case len(founders) == 2:
		if gap := founders[0] - founders[1]; gap > maxTwoFounderGap {
			flags = append(flags, yellowf(FieldEquity, "uneven founder split: %.1f%% vs %.1f%% (gap %.1f points)", founders[0], founders[1], gap))
		}
	case len(founders) >= 3:
		for i := 1; i < len(founders); i++ {
			if gap := founders[i-1] - founders[i]; gap > maxAdjacentGap {
				flags = append(flags, yellowf(FieldEquity, "uneven founder split: %.1f%% vs %.1f%% (gap %.1f points)", founders[i-1], founders[i], gap))
				break
			}
		}
	}

	if math.Abs(s.GrandTotal-100) > sumTolerance {
		flags = append(flags, yellowf(FieldEquity, "equity sums to %.1f%%, not 100%%", s.GrandTotal))
	}

	return flags
}

func onlyTotals(rows []models.EquityRow) bool {
	for _, r := range rows {
		if r.Category != models.EquityTotal && r.Category != models.EquityGrandTotal {
			return false
		}
	}
	return true
}
