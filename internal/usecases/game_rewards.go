package usecases

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RewardTier pays Points when the tier roll lands below Below
type RewardTier struct {
	Points int64 `yaml:"points"`
	Below  int   `yaml:"below"`
}

// RewardTable is the weighted point draw used when a won game has no
// coupon to hand out. A first roll in [0, WinRoll) below LoseBelow pays
// nothing; otherwise a second roll in [0, TierRoll) picks the first tier
// whose Below it does not reach.
type RewardTable struct {
	WinRoll   int          `yaml:"win_roll"`
	LoseBelow int          `yaml:"lose_below"`
	TierRoll  int          `yaml:"tier_roll"`
	Tiers     []RewardTier `yaml:"tiers"`
}

// DefaultRewardTable is a 25% win chance with 10..100 point tiers
func DefaultRewardTable() *RewardTable {
	return &RewardTable{
		WinRoll:   400,
		LoseBelow: 300,
		TierRoll:  100,
		Tiers: []RewardTier{
			{Points: 10, Below: 20},
			{Points: 20, Below: 30},
			{Points: 30, Below: 45},
			{Points: 40, Below: 55},
			{Points: 50, Below: 65},
			{Points: 60, Below: 75},
			{Points: 70, Below: 83},
			{Points: 80, Below: 90},
			{Points: 90, Below: 96},
			{Points: 100, Below: 100},
		},
	}
}

// LoadRewardTable reads a YAML reward table. An empty path yields the default.
func LoadRewardTable(path string) (*RewardTable, error) {
	if path == "" {
		return DefaultRewardTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reward table: %w", err)
	}
	return ParseRewardTable(raw)
}

// ParseRewardTable decodes and validates a YAML reward table
func ParseRewardTable(raw []byte) (*RewardTable, error) {
	var table RewardTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode reward table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks that the rolls are positive and the tiers cover the tier roll
func (t *RewardTable) Validate() error {
	if t.WinRoll <= 0 || t.TierRoll <= 0 {
		return fmt.Errorf("reward table: rolls must be positive")
	}
	if t.LoseBelow < 0 || t.LoseBelow > t.WinRoll {
		return fmt.Errorf("reward table: lose_below must be within [0, %d]", t.WinRoll)
	}
	if len(t.Tiers) == 0 {
		return fmt.Errorf("reward table: no tiers")
	}
	prev := 0
	for i, tier := range t.Tiers {
		if tier.Points <= 0 {
			return fmt.Errorf("reward table: tier %d pays no points", i)
		}
		if tier.Below <= prev {
			return fmt.Errorf("reward table: tier %d threshold %d is not ascending", i, tier.Below)
		}
		prev = tier.Below
	}
	if prev != t.TierRoll {
		return fmt.Errorf("reward table: last threshold %d must equal tier_roll %d", prev, t.TierRoll)
	}
	return nil
}

// Draw returns the points won, zero for no win. rng(n) must return a
// value in [0, n).
func (t *RewardTable) Draw(rng func(n int) int) int64 {
	if rng(t.WinRoll) < t.LoseBelow {
		return 0
	}
	roll := rng(t.TierRoll)
	for _, tier := range t.Tiers {
		if roll < tier.Below {
			return tier.Points
		}
	}
	return t.Tiers[len(t.Tiers)-1].Points
}
