package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/zone"
)

// Combat validation messages.
const (
	MsgAttackerNotOnField    = "Attacking permanent is not on the battlefield!"
	MsgAttackerNotControlled = "Attacking permanent is not controlled by the active player!"
	MsgAttackerNotCreature   = "Only creatures can attack!"
	MsgAttackerSummoningSick = "Creature with summoning sickness cannot attack!"
	MsgAttackerTapped        = "Tapped creature cannot attack!"
	MsgAttackerDuplicated    = "Creature is declared as an attacker more than once!"
	MsgBlockedNotAttacking   = "Blocked permanent is not attacking!"
	MsgAttackerBlockedTwice  = "Attacker appears in more than one combat!"
	MsgBlockerInManyCombats  = "Blocking permanent appears in more than one combat!"
	MsgBlockerNotOnField     = "Blocking permanent is not on the battlefield!"
	MsgBlockerNotControlled  = "Blocking permanent is not controlled by the defending player!"
	MsgBlockerNotCreature    = "Only creatures can block!"
	MsgBlockerTapped         = "Tapped creature cannot block!"
)

// CombatResolver collects attack and block decisions and deals combat damage.
type CombatResolver struct {
	bus    *rules.EventBus
	logger *zap.Logger
}

// NewCombatResolver creates a combat resolver. bus and logger may be nil.
func NewCombatResolver(bus *rules.EventBus, logger *zap.Logger) *CombatResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CombatResolver{bus: bus, logger: logger}
}

// DeclareAttackers asks the active player's strategy for attackers. A
// decision with any invalid attacker is dropped as a whole; its reasons are
// returned and no creature attacks. Valid attackers become tapped.
func (c *CombatResolver) DeclareAttackers(t *game.Tabletop) game.ValidationResult {
	if t.Combat == nil {
		t.Combat = &game.CombatState{}
	}
	decision := t.ActivePlayer.Strategy.DeclareAttacker(t)

	validation := c.validateAttackers(t, decision)
	if !validation.IsSuccessful() {
		c.logger.Debug("attack declaration rejected",
			zap.Int("turn", t.TurnID),
			zap.String("player", t.ActivePlayer.Name),
			zap.Strings("reasons", validation.Messages()),
		)
		t.Combat.Attackers = nil
		return validation
	}

	for _, attacker := range decision.Attackers {
		attacker.Tapped = true
	}
	t.Combat.Attackers = append([]*game.Permanent(nil), decision.Attackers...)
	if len(t.Combat.Attackers) > 0 {
		publish(c.bus, t, rules.Event{
			Type:        rules.EventAttackersDeclared,
			PlayerID:    t.ActivePlayer.ID,
			TargetID:    t.NonActivePlayer.ID,
			Amount:      len(t.Combat.Attackers),
			Description: fmt.Sprintf("%s attacks with %v", t.ActivePlayer.Name, t.Combat.Attackers),
		})
	}
	return validation
}

func (c *CombatResolver) validateAttackers(t *game.Tabletop, decision game.AttackingDecision) game.ValidationResult {
	result := game.Valid()
	seen := make(map[*game.Permanent]bool, len(decision.Attackers))
	for _, attacker := range decision.Attackers {
		if attacker == nil || !t.Battlefield.Contains(attacker) {
			result = result.Combine(game.Invalid(MsgAttackerNotOnField, attacker, rules.Rule508_1a))
			continue
		}
		if seen[attacker] {
			result = result.Combine(game.Invalid(MsgAttackerDuplicated, attacker, rules.Rule508_1a))
			continue
		}
		seen[attacker] = true
		if attacker.Controller != t.ActivePlayer {
			result = result.Combine(game.Invalid(MsgAttackerNotControlled, attacker, rules.Rule508_1a))
		}
		if !attacker.IsCreature() {
			result = result.Combine(game.Invalid(MsgAttackerNotCreature, attacker, rules.Rule508_1a))
		}
		if attacker.SummoningSick {
			result = result.Combine(game.Invalid(MsgAttackerSummoningSick, attacker, rules.Rule302_6))
		}
		if attacker.Tapped {
			result = result.Combine(game.Invalid(MsgAttackerTapped, attacker, rules.Rule508_1a))
		}
	}
	return result
}

// DeclareBlockers asks the non-active player's strategy for blocks. A
// decision with any invalid block is dropped as a whole and every attacker
// stays unblocked. Every attacker ends up with exactly one Combat entry.
func (c *CombatResolver) DeclareBlockers(t *game.Tabletop) game.ValidationResult {
	if t.Combat == nil || len(t.Combat.Attackers) == 0 {
		return game.Valid()
	}
	decision := t.NonActivePlayer.Strategy.DeclareBlocker(t)

	validation := c.validateBlockers(t, decision)
	blocks := make(map[*game.Permanent][]*game.Permanent)
	if validation.IsSuccessful() {
		for _, combat := range decision.Combats {
			blocks[combat.Attacker] = append([]*game.Permanent(nil), combat.Blockers...)
		}
	} else {
		c.logger.Debug("block declaration rejected",
			zap.Int("turn", t.TurnID),
			zap.String("player", t.NonActivePlayer.Name),
			zap.Strings("reasons", validation.Messages()),
		)
	}

	t.Combat.Combats = make([]game.Combat, 0, len(t.Combat.Attackers))
	blockerCount := 0
	for _, attacker := range t.Combat.Attackers {
		t.Combat.Combats = append(t.Combat.Combats, game.Combat{
			Attacker: attacker,
			Blockers: blocks[attacker],
		})
		blockerCount += len(blocks[attacker])
	}
	if blockerCount > 0 {
		publish(c.bus, t, rules.Event{
			Type:        rules.EventBlockersDeclared,
			PlayerID:    t.NonActivePlayer.ID,
			Amount:      blockerCount,
			Description: fmt.Sprintf("%s blocks with %d creatures", t.NonActivePlayer.Name, blockerCount),
		})
	}
	return validation
}

func (c *CombatResolver) validateBlockers(t *game.Tabletop, decision game.BlockingDecision) game.ValidationResult {
	result := game.Valid()
	attackers := make(map[*game.Permanent]bool, len(decision.Combats))
	blockers := make(map[*game.Permanent]bool)
	for _, combat := range decision.Combats {
		if !t.Combat.IsAttacking(combat.Attacker) {
			result = result.Combine(game.Invalid(MsgBlockedNotAttacking, combat.Attacker, rules.Rule509_1a))
		} else if attackers[combat.Attacker] {
			result = result.Combine(game.Invalid(MsgAttackerBlockedTwice, combat.Attacker, rules.Rule509_1a))
		}
		attackers[combat.Attacker] = true

		for _, blocker := range combat.Blockers {
			if blockers[blocker] {
				result = result.Combine(game.Invalid(MsgBlockerInManyCombats, blocker, rules.Rule509_1a))
				continue
			}
			blockers[blocker] = true
			if blocker == nil || !t.Battlefield.Contains(blocker) {
				result = result.Combine(game.Invalid(MsgBlockerNotOnField, blocker, rules.Rule509_1a))
				continue
			}
			if blocker.Controller != t.NonActivePlayer {
				result = result.Combine(game.Invalid(MsgBlockerNotControlled, blocker, rules.Rule509_1a))
			}
			if !blocker.IsCreature() {
				result = result.Combine(game.Invalid(MsgBlockerNotCreature, blocker, rules.Rule509_1a))
			}
			if blocker.Tapped {
				result = result.Combine(game.Invalid(MsgBlockerTapped, blocker, rules.Rule509_1a))
			}
		}
	}
	return result
}

type damageAssignment struct {
	target *game.Permanent
	amount int
}

// ResolveCombatDamage computes the damage of every combat first and then
// applies it all at once, so a creature that dies still deals its damage.
// Permanents with lethal damage go to their owner's graveyard afterwards.
// A blocked attacker never damages the defending player, and an attacker
// with several blockers assigns lethal damage in the declared order with
// the remainder going to the last blocker.
func (c *CombatResolver) ResolveCombatDamage(t *game.Tabletop) error {
	if t.Combat == nil {
		return nil
	}
	defender := t.NonActivePlayer

	var assignments []damageAssignment
	playerDamage := 0
	for _, combat := range t.Combat.Combats {
		attacker := combat.Attacker
		if !t.Battlefield.Contains(attacker) {
			continue
		}
		if !combat.IsBlocked() {
			playerDamage += power(attacker)
			continue
		}

		remaining := power(attacker)
		var blockers []*game.Permanent
		for _, b := range combat.Blockers {
			if t.Battlefield.Contains(b) {
				blockers = append(blockers, b)
			}
		}
		for i, blocker := range blockers {
			assignments = append(assignments, damageAssignment{target: attacker, amount: power(blocker)})

			dealt := remaining
			if i < len(blockers)-1 {
				dealt = min(remaining, max(blocker.Toughness()-blocker.Damage, 0))
			}
			remaining -= dealt
			assignments = append(assignments, damageAssignment{target: blocker, amount: dealt})
		}
	}

	for _, a := range assignments {
		a.target.Damage += a.amount
	}
	if playerDamage > 0 {
		defender.Life -= playerDamage
		publish(c.bus, t, rules.Event{
			Type:        rules.EventCombatDamageDealt,
			PlayerID:    t.ActivePlayer.ID,
			TargetID:    defender.ID,
			Amount:      playerDamage,
			Description: fmt.Sprintf("%s takes %d combat damage", defender.Name, playerDamage),
		})
	}
	c.logger.Debug("combat damage dealt",
		zap.Int("turn", t.TurnID),
		zap.Int("player_damage", playerDamage),
		zap.Int("assignments", len(assignments)),
	)

	return c.destroyLethallyDamaged(t)
}

func (c *CombatResolver) destroyLethallyDamaged(t *game.Tabletop) error {
	for _, perm := range t.Battlefield.FindAll() {
		if !perm.HasLethalDamage() {
			continue
		}
		err := zone.MoveToZone(perm, t.Battlefield, perm.Owner.Graveyard, func(p *game.Permanent) *game.Card {
			return p.Card
		})
		if err != nil {
			return fmt.Errorf("%w: %v", game.ErrEntityNotInZone, err)
		}
		publish(c.bus, t, rules.Event{
			Type:        rules.EventPermanentDied,
			PlayerID:    perm.Owner.ID,
			SourceID:    perm.ID(),
			Description: perm.Name() + " dies",
		})
	}
	return nil
}

// EndCombat clears the combat state.
func (c *CombatResolver) EndCombat(t *game.Tabletop) {
	t.Combat = nil
}

func power(p *game.Permanent) int {
	return max(p.Power(), 0)
}
