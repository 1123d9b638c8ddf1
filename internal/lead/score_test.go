package lead

import (
	"math"
	"testing"
)

func TestIntentScore_WeightsAccumulate(t *testing.T) {
	// 0.15 + 0.12 + 0.15 base, plus 3 * 0.02 engagement.
	score := IntentScore([]string{SignalBudget, SignalRequirements, SignalTimeline}, 3)
	want := 0.48
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("IntentScore = %v, want %v", score, want)
	}
}

func TestIntentScore_UnknownSignalWeight(t *testing.T) {
	score := IntentScore([]string{"something_new"}, 0)
	if math.Abs(score-0.05) > 1e-9 {
		t.Errorf("unknown signal score = %v, want 0.05", score)
	}
}

func TestIntentScore_EngagementBonusSaturates(t *testing.T) {
	at8 := IntentScore(nil, 8)
	at20 := IntentScore(nil, 20)
	if math.Abs(at8-0.15) > 1e-9 {
		t.Errorf("bonus at 8 messages = %v, want 0.15", at8)
	}
	if at20 != at8 {
		t.Errorf("bonus should saturate at 0.15, got %v at depth 20", at20)
	}
}

func TestIntentScore_CappedAtOne(t *testing.T) {
	all := []string{
		SignalBudget, SignalRequirements, SignalTimeline, SignalLocation,
		SignalLuxury, SignalComparison, SignalPurchase, SignalViewing,
		SignalSituation,
	}
	if score := IntentScore(all, 50); score != 1.0 {
		t.Errorf("score = %v, want cap at 1.0", score)
	}
}

func TestClassify_InclusiveBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Level
	}{
		{0.8, LevelHigh},
		{0.7999, LevelMedium},
		{0.6, LevelMedium},
		{0.5999, LevelLow},
		{0.29, LevelLow},
		{0.0, LevelLow},
		{1.0, LevelHigh},
	}
	for _, tc := range cases {
		if got := DefaultThresholds.Classify(tc.score); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.456); got != 0.46 {
		t.Errorf("Round2(0.456) = %v, want 0.46", got)
	}
	if got := Round2(0.444); got != 0.44 {
		t.Errorf("Round2(0.444) = %v, want 0.44", got)
	}
}

func TestRecommendAction_Precedence(t *testing.T) {
	cases := []struct {
		name    string
		level   Level
		signals []string
		want    string
	}{
		{"high with viewing", LevelHigh, []string{SignalViewing}, ActionScheduleViewing},
		{"high without viewing", LevelHigh, []string{SignalBudget}, ActionCaptureContact},
		{"medium with requirements", LevelMedium, []string{SignalRequirements, SignalComparison}, ActionShowFloorplans},
		{"medium with comparison only", LevelMedium, []string{SignalComparison}, ActionProvideComparison},
		{"medium plain", LevelMedium, []string{SignalBudget}, ActionShareDetails},
		{"low", LevelLow, []string{SignalViewing}, ActionEducate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RecommendAction(tc.level, tc.signals); got != tc.want {
				t.Errorf("RecommendAction(%v, %v) = %q, want %q", tc.level, tc.signals, got, tc.want)
			}
		})
	}
}

func TestSnapshot_ClassifiesBeforeRounding(t *testing.T) {
	// Base 0.15 + 0.12 + 0.15 + 0.20 = 0.62, depth 4 bonus 0.08 -> 0.70.
	signals := []string{SignalBudget, SignalRequirements, SignalTimeline, SignalViewing}
	snap := Snapshot(signals, 4, DefaultThresholds)

	if snap.Intent != LevelMedium {
		t.Errorf("intent = %v, want medium", snap.Intent)
	}
	if snap.IntentScore != 0.70 {
		t.Errorf("intent_score = %v, want 0.70", snap.IntentScore)
	}
	if snap.RecommendedAction != ActionShowFloorplans {
		t.Errorf("recommended_action = %q, want %q", snap.RecommendedAction, ActionShowFloorplans)
	}
	if snap.ConversationDepth != 4 {
		t.Errorf("conversation_depth = %d, want 4", snap.ConversationDepth)
	}
}

func TestShouldRequestContact(t *testing.T) {
	cases := []struct {
		name     string
		leadInfo map[string]string
		level    Level
		depth    int
		wantAsk  bool
		wantWhat string
	}{
		{"too early", nil, LevelHigh, 1, false, ""},
		{"high no contact", map[string]string{}, LevelHigh, 4, true, RequestContactMethod},
		{"high has phone no name", map[string]string{FieldPhone: "+971501234567"}, LevelHigh, 4, true, RequestName},
		{"high complete", map[string]string{FieldPhone: "x", FieldName: "y"}, LevelHigh, 4, false, ""},
		{"medium deep no email", map[string]string{}, LevelMedium, 3, true, RequestEmail},
		{"medium shallow", map[string]string{}, LevelMedium, 2, false, ""},
		{"low", map[string]string{}, LevelLow, 9, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ask, what := ShouldRequestContact(tc.leadInfo, tc.level, tc.depth)
			if ask != tc.wantAsk || what != tc.wantWhat {
				t.Errorf("ShouldRequestContact = (%v, %q), want (%v, %q)", ask, what, tc.wantAsk, tc.wantWhat)
			}
		})
	}
}
