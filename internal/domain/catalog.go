package domain

// Catalog bundles the fixed game-design lookup tables. It is built once
// at startup and passed into the service, never mutated, so tests can
// substitute their own tables without hidden global state.
type Catalog struct {
	// Missions generated per sync cycle.
	MissionsPerCycle int

	// Skill-level lookup tables for the deterministic missions.
	PlayGamesTargets      map[string]int64
	MaintainStreakTargets map[string]int64
	PlayGamesDefault      int64
	MaintainStreakDefault int64

	// Reward amount per difficulty tier.
	TierRewards map[Difficulty]int64

	// Store product id -> granted reward.
	ProductRewards map[string]ProductReward

	// Cosmetic skin assumed when the client omits one.
	DefaultSkin string

	// Starting-coin values for the two A/B variants, used when the
	// remote config document does not declare its own.
	StartingCoinsVariantA int64
	StartingCoinsVariantB int64
}

// DefaultCatalog returns the production lookup tables.
func DefaultCatalog() Catalog {
	return Catalog{
		MissionsPerCycle: 4,
		PlayGamesTargets: map[string]int64{
			"beginner":     3,
			"novice":       4,
			"intermediate": 5,
			"advanced":     6,
			"expert":       8,
		},
		MaintainStreakTargets: map[string]int64{
			"beginner":     2,
			"novice":       3,
			"intermediate": 3,
			"advanced":     4,
			"expert":       5,
		},
		PlayGamesDefault:      4,
		MaintainStreakDefault: 3,
		TierRewards: map[Difficulty]int64{
			DifficultyEasy:   100,
			DifficultyMedium: 200,
			DifficultyHard:   300,
			DifficultyExpert: 500,
		},
		ProductRewards: map[string]ProductReward{
			"gems_small":  {Gems: 100},
			"gems_medium": {Gems: 550},
			"gems_large":  {Gems: 1200},
			"gems_mega":   {Gems: 2600},
			"remove_ads":  {AdRemoval: true},
		},
		DefaultSkin:           "sky_jet",
		StartingCoinsVariantA: 500,
		StartingCoinsVariantB: 750,
	}
}
