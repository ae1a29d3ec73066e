package rules

// Comprehensive rules sections cited by validation reasons.
const (
	Rule117_1  = "117.1"  // timing and priority
	Rule302_6  = "302.6"  // summoning sickness
	Rule305_1  = "305.1"  // playing a land
	Rule305_2  = "305.2"  // one land per turn
	Rule307_1  = "307.1"  // sorcery timing
	Rule116_2a = "116.2a" // playing a land is a special action
	Rule118_3  = "118.3"  // paying costs
	Rule508_1a = "508.1a" // choosing attackers
	Rule509_1a = "509.1a" // choosing blockers
	Rule510_1c = "510.1c" // damage assignment among blockers
	Rule601_2  = "601.2"  // casting spells
	Rule605_1a = "605.1a" // mana abilities
	Rule701_8  = "701.8"  // discard
)
