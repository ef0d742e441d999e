package models

// FlagType is the severity of a rule violation.
type FlagType string

const (
	FlagYellow FlagType = "YELLOW"
	FlagRed    FlagType = "RED"
)

// Flag is a named rule violation. Flags are always recomputed, never edited.
type Flag struct {
	Type    FlagType `json:"type"`
	Field   string   `json:"field"`
	Message string   `json:"message"`
}

// FlaggingResult is the output of one rule engine pass.
type FlaggingResult struct {
	Flags       []Flag `json:"flags"`
	AutoAdvance bool   `json:"autoAdvance"`
	NeedsReview bool   `json:"needsReview"`
}

func (r FlaggingResult) HasRed() bool {
	for _, f := range r.Flags {
		if f.Type == FlagRed {
			return true
		}
	}
	return false
}

// Count returns the number of flags of type t.
func (r FlaggingResult) Count(t FlagType) int {
	n := 0
	for _, f := range r.Flags {
		if f.Type == t {
			n++
		}
	}
	return n
}
