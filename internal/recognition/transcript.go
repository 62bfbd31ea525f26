package recognition

import "strings"

// Segment is one recognizer result. Segments of an utterance arrive in
// increasing completeness and end with a final one.
type Segment struct {
	Text  string
	Final bool
}

// Transcript is the accumulation of one delivery of segments
type Transcript struct {
	Final    string
	Interim  string
	HasFinal bool
}

// Display is the text shown while the user speaks
func (t Transcript) Display() string {
	return t.Final + t.Interim
}

// Accumulate concatenates final segments and pending segments separately,
// in delivery order
func Accumulate(segments []Segment) Transcript {
	var final, interim strings.Builder
	var t Transcript
	for _, s := range segments {
		if s.Final {
			final.WriteString(s.Text)
			t.HasFinal = true
		} else {
			interim.WriteString(s.Text)
		}
	}
	t.Final = final.String()
	t.Interim = interim.String()
	return t
}
