// Package lead analyses conversation turns for buying intent: it detects
// named buying signals, extracts contact details, and scores accumulated
// signals into an intent tier with a recommended next action.
package lead

import "regexp"

// Buying-signal tags. Tags accumulate per session and never shrink; the
// session store owns accumulation, the detector is stateless.
const (
	SignalBudget       = "budget_mentioned"
	SignalRequirements = "specific_requirements"
	SignalTimeline     = "timeline_mentioned"
	SignalLocation     = "location_preference"
	SignalLuxury       = "luxury_feature_interest"
	SignalComparison   = "comparison_intent"
	SignalPurchase     = "purchase_process_inquiry"
	SignalViewing      = "viewing_interest"
	SignalSituation    = "current_situation_shared"
)

// signalRule is one detector: a tag fires when any of its patterns matches
// the lowercased message. The ruleset is data, not control flow, so each
// detector stays independently testable.
type signalRule struct {
	tag      string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var signalRules = []signalRule{
	{SignalBudget, compileAll(
		`\$[\d,]+`, `aed[\s]?[\d,]+`, `budget`, `price`, `cost`,
		`afford`, `million`, `thousand`, `payment`, `financing`,
	)},
	{SignalRequirements, compileAll(
		`\d+\s*bedroom`, `\d+br`, `pool`, `garden`, `parking`,
		`sqm`, `square`, `layout`, `master bedroom`, `ensuite`,
		`maid room`, `storage`, `terrace`, `balcony`,
	)},
	{SignalTimeline, compileAll(
		`soon`, `urgently`, `asap`, `immediately`, `next month`,
		`by\s+\w+`, `looking to move`, `need by`, `within`,
		`this year`, `next year`, `\d+\s*months?`,
	)},
	{SignalLocation, compileAll(
		`dubai`, `festival city`, `al badia`, `area`, `location`,
		`neighborhood`, `near`, `close to`, `proximity`,
	)},
	{SignalLuxury, compileAll(
		`luxury`, `premium`, `high-end`, `upscale`, `exclusive`,
		`pool`, `golf`, `spa`, `gym`, `clubhouse`,
	)},
	{SignalComparison, compileAll(
		`compare`, `versus`, `vs`, `difference`, `better`,
		`which one`, `or`, `between`,
	)},
	{SignalPurchase, compileAll(
		`how to buy`, `purchase`, `documentation`, `paperwork`,
		`mortgage`, `loan`, `financing`, `down payment`,
		`process`, `steps`, `requirements`,
	)},
	{SignalViewing, compileAll(
		`visit`, `view`, `see`, `tour`, `show`, `schedule`,
		`appointment`, `when can`, `available to see`,
	)},
	{SignalSituation, compileAll(
		`currently`, `renting`, `selling`, `own`, `living in`,
		`lease`, `tenant`, `landlord`, `moving from`,
	)},
}

// DetectSignals returns the buying-signal tags present in the message, in
// detector order. Each detector is a pure function of the current message;
// history is accepted for interface symmetry only. Absence of a pattern
// never removes a previously detected session-level signal.
func DetectSignals(message string, history []string) []string {
	_ = history

	lower := lowercase(message)
	var signals []string
	for _, rule := range signalRules {
		for _, p := range rule.patterns {
			if p.MatchString(lower) {
				signals = append(signals, rule.tag)
				break
			}
		}
	}
	return signals
}
