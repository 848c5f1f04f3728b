package emotion

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"turkish excitement", "Harika, sabırsızlanıyorum", "excited"},
		{"english frustration", "This is ridiculous, it's not working", "frustrated"},
		{"anxiety", "I'm worried about travelling, not sure it's safe", "anxious"},
		{"disappointment", "Maalesef beklemiyordum bunu", "disappointed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector()
			got, confidence := d.Detect("s", tc.message)
			if got != tc.want {
				t.Errorf("Detect(%q) = %q, want %q", tc.message, got, tc.want)
			}
			if confidence < 0.5 {
				t.Errorf("expected confidence >= 0.5, got %v", confidence)
			}
		})
	}
}

func TestDetect_NeutralMessage(t *testing.T) {
	d := NewDetector()
	got, confidence := d.Detect("s", "We are two people")
	if got != "neutral" || confidence != 0 {
		t.Errorf("expected neutral/0, got %q/%v", got, confidence)
	}
}

func TestDetect_RepeatedEmotionRaisesConfidence(t *testing.T) {
	d := NewDetector()
	_, first := d.Detect("s", "This is frustrating")
	_, second := d.Detect("s", "Still so annoyed, this is ridiculous")
	if second <= first {
		t.Errorf("expected repeated emotion to raise confidence: %v then %v", first, second)
	}
	if second > 0.95 {
		t.Errorf("confidence must saturate at 0.95, got %v", second)
	}
}

func TestDetect_NeutralDecaysPreviousRead(t *testing.T) {
	d := NewDetector()
	d.Detect("s", "so frustrated, this is ridiculous, not working")
	got, confidence := d.Detect("s", "ok")
	// One neutral turn after a strong read decays below the floor.
	if got != "neutral" || confidence != 0 {
		t.Errorf("expected decay to neutral, got %q/%v", got, confidence)
	}
}

func TestDetect_SessionsAreIndependent(t *testing.T) {
	d := NewDetector()
	d.Detect("a", "this is frustrating")
	got, confidence := d.Detect("b", "plain message")
	if got != "neutral" || confidence != 0 {
		t.Errorf("session b must not inherit session a's read, got %q/%v", got, confidence)
	}
}

func TestForget(t *testing.T) {
	d := NewDetector()
	d.Detect("s", "this is frustrating")
	d.Forget("s")
	got, confidence := d.Detect("s", "neutral text")
	if got != "neutral" || confidence != 0 {
		t.Errorf("expected clean slate after Forget, got %q/%v", got, confidence)
	}
}
