package mana

import "strings"

// Pool is an immutable snapshot of a player's mana pool.
// Operations return a new Pool; the zero value is an empty pool.
type Pool struct {
	amounts [colorCount]int
}

// PoolBuilder accumulates mana before producing a Pool.
type PoolBuilder struct {
	amounts [colorCount]int
}

// NewPool starts a pool builder.
func NewPool() *PoolBuilder {
	return &PoolBuilder{}
}

// Add adds mana of a pool color. Generic and non-positive amounts are ignored.
func (b *PoolBuilder) Add(color Color, amount int) *PoolBuilder {
	if amount > 0 && color >= 0 && color < ColorGeneric {
		b.amounts[color] += amount
	}
	return b
}

// Build returns the immutable pool.
func (b *PoolBuilder) Build() Pool {
	return Pool{amounts: b.amounts}
}

// With returns a copy of the pool with amount of color added.
func (p Pool) With(color Color, amount int) Pool {
	b := &PoolBuilder{amounts: p.amounts}
	return b.Add(color, amount).Build()
}

// Amount returns how much mana of a color is in the pool.
func (p Pool) Amount(color Color) int {
	if color < 0 || color >= ColorGeneric {
		return 0
	}
	return p.amounts[color]
}

// Total returns the total mana in the pool.
func (p Pool) Total() int {
	total := 0
	for _, n := range p.amounts {
		total += n
	}
	return total
}

// IsEmpty reports whether the pool holds no mana.
func (p Pool) IsEmpty() bool {
	return p.Total() == 0
}

// CanPay reports whether the pool covers the cost: colored requirements
// first, then generic from whatever is left.
func (p Pool) CanPay(cost Cost) bool {
	_, ok := p.Pay(cost)
	return ok
}

// Pay returns the pool left after paying cost, or false if it cannot be paid.
// Generic mana is taken from colorless first, then in WUBRG order.
func (p Pool) Pay(cost Cost) (Pool, bool) {
	left := p.amounts
	for _, color := range Colors() {
		need := cost.Amount(color)
		if left[color] < need {
			return p, false
		}
		left[color] -= need
	}

	generic := cost.Amount(ColorGeneric)
	order := append([]Color{ColorColorless}, Colors()[:5]...)
	for _, color := range order {
		if generic == 0 {
			break
		}
		take := left[color]
		if take > generic {
			take = generic
		}
		left[color] -= take
		generic -= take
	}
	if generic > 0 {
		return p, false
	}
	return Pool{amounts: left}, true
}

// String renders the pool contents, e.g. "{G}{G}{C}".
func (p Pool) String() string {
	var sb strings.Builder
	for _, color := range Colors() {
		for i := 0; i < p.amounts[color]; i++ {
			sb.WriteString("{" + color.Symbol() + "}")
		}
	}
	return sb.String()
}
