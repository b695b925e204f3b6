package main

import (
	"reflect"
	"strconv"
	"testing"
)

func TestLegendOrder(t *testing.T) {
	// With ten or more variables the ordering must be numeric, not
	// lexicographic: id2 before id10.
	identifierMap := map[string]string{}
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for i, n := range names {
		identifierMap[n] = "id" + strconv.Itoa(i+1)
	}

	if got := legendOrder(identifierMap); !reflect.DeepEqual(got, names) {
		t.Errorf("legendOrder = %v, want %v", got, names)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{5, "5"},
		{-3, "-3"},
		{2.5, "2.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.value); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
