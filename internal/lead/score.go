package lead

import "math"

// Level is the coarse intent tier derived from the intent score.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Recommended next actions, keyed by (tier, signals) in RecommendAction.
const (
	ActionScheduleViewing   = "schedule_viewing_immediately"
	ActionCaptureContact    = "capture_contact_and_schedule_callback"
	ActionShowFloorplans    = "show_floorplans_and_qualify"
	ActionProvideComparison = "provide_comparison_capture_preference"
	ActionShareDetails      = "share_more_details_build_interest"
	ActionEducate           = "educate_and_build_interest"
)

// signalWeights fixes the contribution of each known signal tag.
// Unrecognised tags fall back to defaultSignalWeight.
var signalWeights = map[string]float64{
	SignalBudget:       0.15,
	SignalRequirements: 0.12,
	SignalTimeline:     0.15,
	SignalLocation:     0.08,
	SignalLuxury:       0.08,
	SignalComparison:   0.10,
	SignalPurchase:     0.15,
	SignalViewing:      0.20,
	SignalSituation:    0.10,
}

const (
	defaultSignalWeight = 0.05
	engagementStep      = 0.02
	engagementCap       = 0.15
)

// Thresholds configure the tier boundaries. Boundaries are inclusive: a
// score exactly equal to a threshold qualifies for that tier.
type Thresholds struct {
	Low    float64
	Medium float64
	High   float64
}

// DefaultThresholds match the shipped scoring configuration.
var DefaultThresholds = Thresholds{Low: 0.3, Medium: 0.6, High: 0.8}

// IntentScore combines the cumulative signal set with conversation length
// into a bounded score in [0,1]. The base is the weight sum over all signals
// ever accumulated; the engagement bonus saturates at 0.15 (reached at 8
// messages). Purely additive: signals never decay.
func IntentScore(signals []string, conversationLength int) float64 {
	var base float64
	for _, s := range signals {
		w, ok := signalWeights[s]
		if !ok {
			w = defaultSignalWeight
		}
		base += w
	}

	bonus := math.Min(float64(conversationLength)*engagementStep, engagementCap)

	return math.Min(base+bonus, 1.0)
}

// Round2 rounds a score to two decimal places for reporting.
func Round2(score float64) float64 {
	return math.Round(score*100) / 100
}

// Classify buckets a score into a tier.
func (t Thresholds) Classify(score float64) Level {
	switch {
	case score >= t.High:
		return LevelHigh
	case score >= t.Medium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// RecommendAction picks the next action for the given tier and signal set.
// Within the medium tier, specific requirements take precedence over
// comparison intent.
func RecommendAction(level Level, signals []string) string {
	has := func(tag string) bool {
		for _, s := range signals {
			if s == tag {
				return true
			}
		}
		return false
	}

	switch level {
	case LevelHigh:
		if has(SignalViewing) {
			return ActionScheduleViewing
		}
		return ActionCaptureContact
	case LevelMedium:
		if has(SignalRequirements) {
			return ActionShowFloorplans
		}
		if has(SignalComparison) {
			return ActionProvideComparison
		}
		return ActionShareDetails
	default:
		return ActionEducate
	}
}

// Signals is the per-turn lead snapshot included in every turn result.
// It is derived, never persisted.
type Signals struct {
	Intent            Level    `json:"intent"`
	IntentScore       float64  `json:"intent_score"`
	SignalsDetected   []string `json:"signals_detected"`
	RecommendedAction string   `json:"recommended_action"`
	ConversationDepth int      `json:"conversation_depth"`
}

// Snapshot builds the lead snapshot from the full cumulative signal set and
// the conversation depth at scoring time. The reported score is rounded to
// two decimals; the unrounded value is not retained.
func Snapshot(signals []string, conversationLength int, t Thresholds) Signals {
	score := IntentScore(signals, conversationLength)
	level := t.Classify(score)
	return Signals{
		Intent:            level,
		IntentScore:       Round2(score),
		SignalsDetected:   signals,
		RecommendedAction: RecommendAction(level, signals),
		ConversationDepth: conversationLength,
	}
}

// Contact-request field hints returned by ShouldRequestContact.
const (
	RequestContactMethod = "contact_method"
	RequestName          = "name"
	RequestEmail         = "email_for_brochure"
)

// ShouldRequestContact advises whether this turn should solicit contact
// data, and which field. Advisory only; it gates nothing else. The bot does
// not ask before the conversation has any depth.
func ShouldRequestContact(leadInfo map[string]string, level Level, conversationLength int) (bool, string) {
	if conversationLength < 2 {
		return false, ""
	}

	if level == LevelHigh {
		if leadInfo[FieldPhone] == "" && leadInfo[FieldEmail] == "" {
			return true, RequestContactMethod
		}
		if leadInfo[FieldName] == "" {
			return true, RequestName
		}
		return false, ""
	}

	if level == LevelMedium && conversationLength >= 3 {
		if leadInfo[FieldEmail] == "" {
			return true, RequestEmail
		}
	}

	return false, ""
}
