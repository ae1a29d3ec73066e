package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Color is a closed set of mana types. Generic is only meaningful in costs.
type Color int

const (
	ColorWhite Color = iota
	ColorBlue
	ColorBlack
	ColorRed
	ColorGreen
	ColorColorless
	ColorGeneric

	colorCount
)

var colorSymbols = [colorCount]string{
	ColorWhite:     "W",
	ColorBlue:      "U",
	ColorBlack:     "B",
	ColorRed:       "R",
	ColorGreen:     "G",
	ColorColorless: "C",
	ColorGeneric:   "",
}

var colorNames = [colorCount]string{
	ColorWhite:     "WHITE",
	ColorBlue:      "BLUE",
	ColorBlack:     "BLACK",
	ColorRed:       "RED",
	ColorGreen:     "GREEN",
	ColorColorless: "COLORLESS",
	ColorGeneric:   "GENERIC",
}

func (c Color) String() string {
	if c >= 0 && c < colorCount {
		return colorNames[c]
	}
	return fmt.Sprintf("COLOR_%d", int(c))
}

// Symbol returns the single-letter mana symbol, empty for generic.
func (c Color) Symbol() string {
	if c >= 0 && c < colorCount {
		return colorSymbols[c]
	}
	return ""
}

// ParseColor resolves a symbol (W, U, B, R, G, C) or a color name.
func ParseColor(s string) (Color, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for c := ColorWhite; c < colorCount; c++ {
		if s == colorNames[c] || (s != "" && s == colorSymbols[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown mana color: %q", s)
}

// Colors returns every mana type a pool can hold, in WUBRG-C order.
func Colors() []Color {
	return []Color{ColorWhite, ColorBlue, ColorBlack, ColorRed, ColorGreen, ColorColorless}
}

// Cost is an immutable mana cost. Build one with NewCost or ParseCost.
type Cost struct {
	amounts [colorCount]int
}

// CostBuilder accumulates amounts before producing a Cost.
type CostBuilder struct {
	amounts [colorCount]int
}

// NewCost starts a cost builder.
func NewCost() *CostBuilder {
	return &CostBuilder{}
}

// Add adds amount of the given color. Non-positive amounts are ignored.
func (b *CostBuilder) Add(color Color, amount int) *CostBuilder {
	if amount > 0 && color >= 0 && color < colorCount {
		b.amounts[color] += amount
	}
	return b
}

// Generic adds generic mana.
func (b *CostBuilder) Generic(amount int) *CostBuilder {
	return b.Add(ColorGeneric, amount)
}

// Build returns the immutable cost. The builder can keep being used.
func (b *CostBuilder) Build() Cost {
	return Cost{amounts: b.amounts}
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseCost parses a mana cost string such as "{1}{G}" or "{2}{R}{R}".
// X and hybrid symbols are not supported.
func ParseCost(costStr string) (Cost, error) {
	b := NewCost()
	costStr = strings.TrimSpace(costStr)
	if costStr == "" {
		return b.Build(), nil
	}

	matches := symbolPattern.FindAllStringSubmatch(costStr, -1)
	if len(matches) == 0 {
		return Cost{}, fmt.Errorf("invalid mana cost: %q", costStr)
	}

	for _, match := range matches {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))
		if num, err := strconv.Atoi(symbol); err == nil {
			if num < 0 {
				return Cost{}, fmt.Errorf("negative generic mana: {%s}", symbol)
			}
			b.Generic(num)
			continue
		}
		color, err := ParseColor(symbol)
		if err != nil || color == ColorGeneric {
			return Cost{}, fmt.Errorf("unknown mana symbol: {%s}", symbol)
		}
		b.Add(color, 1)
	}

	return b.Build(), nil
}

// Amount returns how much of a color the cost requires.
func (c Cost) Amount(color Color) int {
	if color < 0 || color >= colorCount {
		return 0
	}
	return c.amounts[color]
}

// Total returns the converted mana value.
func (c Cost) Total() int {
	total := 0
	for _, n := range c.amounts {
		total += n
	}
	return total
}

// IsZero reports whether the cost requires no mana.
func (c Cost) IsZero() bool {
	return c.Total() == 0
}

// String renders the cost with generic first, e.g. "{2}{G}{G}".
func (c Cost) String() string {
	var sb strings.Builder
	if n := c.amounts[ColorGeneric]; n > 0 {
		sb.WriteString(fmt.Sprintf("{%d}", n))
	}
	for _, color := range Colors() {
		for i := 0; i < c.amounts[color]; i++ {
			sb.WriteString("{" + color.Symbol() + "}")
		}
	}
	return sb.String()
}
