package repository

import (
	"reflect"
	"testing"
)

func TestQuestionOrderRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		ids  []int
	}{
		{"TypicalOrder", []int{7, 3, 12, 1, 9, 4, 15, 2, 8, 6}},
		{"SingleQuestion", []int{42}},
		{"Empty", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseQuestionOrder(encodeQuestionOrder(tc.ids))
			if !reflect.DeepEqual(got, tc.ids) {
				t.Errorf("round trip = %v, want %v", got, tc.ids)
			}
		})
	}
}

func TestParseQuestionOrderTolerance(t *testing.T) {
	t.Run("Whitespace", func(t *testing.T) {
		got := parseQuestionOrder(" 1, 2 ,3 ")
		if !reflect.DeepEqual(got, []int{1, 2, 3}) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("GarbageEntriesSkipped", func(t *testing.T) {
		got := parseQuestionOrder("1,x,3")
		if !reflect.DeepEqual(got, []int{1, 3}) {
			t.Errorf("got %v", got)
		}
	})
}
