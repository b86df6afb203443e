package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQuestionPublicRedactsAnswer(t *testing.T) {
	q := Question{
		ID:           5,
		Text:         "What is the first thing you do at a scene?",
		Options:      [4]string{"A", "B", "C", "D"},
		CorrectIndex: 2,
	}

	pub := q.Public()
	if pub.ID != q.ID || pub.Text != q.Text || pub.Options != q.Options {
		t.Errorf("public view lost fields: %+v", pub)
	}

	raw, err := json.Marshal(pub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "correct") {
		t.Errorf("public payload leaks the answer: %s", raw)
	}
}

func TestQuestionJSONHidesCorrectIndex(t *testing.T) {
	q := Question{ID: 1, Text: "t", Options: [4]string{"a", "b", "c", "d"}, CorrectIndex: 3}
	raw, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "correct_index") {
		t.Errorf("question marshals its answer key: %s", raw)
	}
}
