package quality

import (
	"strings"
	"testing"
)

func TestRepetitionDetectorFindsOverusedStem(t *testing.T) {
	d := NewRepetitionDetector()

	// "use", "using", "used" share a stem and appear constantly.
	text := "We use the tool daily. Using the tool helps everyone. " +
		"The tool is used for planning. People keep using it because using beats guessing."

	rep := d.Detect(text)

	if len(rep.TopGlobal) == 0 {
		t.Fatalf("expected at least one global repetition, got none")
	}
	found := false
	for _, r := range rep.TopGlobal {
		if strings.HasPrefix(r.Word, "us") {
			found = true
			if r.Count < 3 {
				t.Errorf("expected stem count >= 3, got %d", r.Count)
			}
			if r.Ratio <= 0 || r.Ratio > 1 {
				t.Errorf("ratio out of range: %v", r.Ratio)
			}
		}
	}
	if !found {
		t.Errorf("expected 'use' stem among repetitions: %+v", rep.TopGlobal)
	}
	if rep.Total == 0 {
		t.Errorf("expected nonzero total repetitions")
	}
}

func TestRepetitionDetectorCleanText(t *testing.T) {
	d := NewRepetitionDetector()

	rep := d.Detect("Every word here differs: apple, banana, cherry, mango, papaya, kiwi.")

	if len(rep.TopGlobal) != 0 {
		t.Errorf("expected no global repetitions, got %+v", rep.TopGlobal)
	}
	if rep.LocalScore != 0 {
		t.Errorf("expected zero local score, got %v", rep.LocalScore)
	}
}

func TestRepetitionDetectorEmptyAndStopwordsOnly(t *testing.T) {
	d := NewRepetitionDetector()

	for _, text := range []string{"", "   ", "the and of to the and of to"} {
		rep := d.Detect(text)
		if rep.Total != 0 || len(rep.TopGlobal) != 0 {
			t.Errorf("input %q: expected empty result, got %+v", text, rep)
		}
	}
}

func TestRepetitionLocalScoreBounded(t *testing.T) {
	d := NewRepetitionDetector()

	rep := d.Detect(strings.Repeat("duplicate ", 40))
	if rep.LocalScore != 1 {
		t.Errorf("expected saturated local score 1.0, got %v", rep.LocalScore)
	}
}
