package mana

import (
	"testing"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		input   string
		generic int
		colors  map[Color]int
		total   int
		err     bool
	}{
		{input: "", total: 0},
		{input: "{1}", generic: 1, total: 1},
		{input: "{G}", colors: map[Color]int{ColorGreen: 1}, total: 1},
		{input: "{1}{G}", generic: 1, colors: map[Color]int{ColorGreen: 1}, total: 2},
		{input: "{2}{R}{R}", generic: 2, colors: map[Color]int{ColorRed: 2}, total: 4},
		{input: "{W}{U}{B}{R}{G}", colors: map[Color]int{ColorWhite: 1, ColorBlue: 1, ColorBlack: 1, ColorRed: 1, ColorGreen: 1}, total: 5},
		{input: "{C}", colors: map[Color]int{ColorColorless: 1}, total: 1},
		{input: "{X}{R}", err: true},
		{input: "{W/U}", err: true},
		{input: "G", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseCost(tt.input)
			if tt.err {
				if err == nil {
					t.Errorf("Expected error for %s, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %s: %v", tt.input, err)
			}
			if result.Amount(ColorGeneric) != tt.generic {
				t.Errorf("Generic: expected %d, got %d", tt.generic, result.Amount(ColorGeneric))
			}
			for _, color := range Colors() {
				if result.Amount(color) != tt.colors[color] {
					t.Errorf("%s: expected %d, got %d", color, tt.colors[color], result.Amount(color))
				}
			}
			if result.Total() != tt.total {
				t.Errorf("Total: expected %d, got %d", tt.total, result.Total())
			}
		})
	}
}

func TestCostString(t *testing.T) {
	cost := NewCost().Add(ColorGreen, 2).Generic(3).Build()
	if got := cost.String(); got != "{3}{G}{G}" {
		t.Errorf("Expected {3}{G}{G}, got %s", got)
	}

	parsed, err := ParseCost(cost.String())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if parsed != cost {
		t.Errorf("Expected round trip to preserve cost, got %s", parsed)
	}
}

func TestCostBuilderDoesNotAliasBuiltCosts(t *testing.T) {
	b := NewCost().Add(ColorRed, 1)
	first := b.Build()
	b.Add(ColorRed, 1)
	second := b.Build()

	if first.Amount(ColorRed) != 1 {
		t.Errorf("Expected first cost to stay at 1 red, got %d", first.Amount(ColorRed))
	}
	if second.Amount(ColorRed) != 2 {
		t.Errorf("Expected second cost to have 2 red, got %d", second.Amount(ColorRed))
	}
}

func TestParseColor(t *testing.T) {
	for _, s := range []string{"G", "green", " GREEN "} {
		c, err := ParseColor(s)
		if err != nil || c != ColorGreen {
			t.Errorf("ParseColor(%q) = %v, %v", s, c, err)
		}
	}
	if _, err := ParseColor("purple"); err == nil {
		t.Error("Expected error for unknown color")
	}
}
