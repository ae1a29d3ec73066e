package simulation

import "sort"

// Summary aggregates the outcomes of a run.
type Summary struct {
	Games        int
	Errors       int
	Draws        int
	Wins         map[string]int // by deck name
	AverageTurns float64
}

// Summarize aggregates outcomes. Games that ended in an error count
// towards Errors only.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Games: len(outcomes), Wins: make(map[string]int)}
	turns, played := 0, 0
	for _, o := range outcomes {
		switch {
		case o.HasError:
			s.Errors++
			continue
		case o.IsDraw():
			s.Draws++
		default:
			s.Wins[o.WinnerDeck]++
		}
		turns += o.Turns
		played++
	}
	if played > 0 {
		s.AverageTurns = float64(turns) / float64(played)
	}
	return s
}

// Decks returns the names of the decks with wins, most wins first.
func (s Summary) Decks() []string {
	names := make([]string, 0, len(s.Wins))
	for name := range s.Wins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Wins[names[i]] != s.Wins[names[j]] {
			return s.Wins[names[i]] > s.Wins[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
