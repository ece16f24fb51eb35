package ranking

import (
	"fmt"
	"strings"
)

// Tier classifies tournament prestige. Historic events carry imported points
// and have no base value.
type Tier string

const (
	Tier1        Tier = "tier1"
	Tier2        Tier = "tier2"
	Tier3        Tier = "tier3"
	Tier4        Tier = "tier4"
	TierHistoric Tier = "historic"
)

// Position is a finishing bucket within an event.
type Position string

const (
	PositionWinner          Position = "winner"
	PositionSecond          Position = "second"
	PositionThird           Position = "third"
	PositionFourth          Position = "fourth"
	PositionQuarterfinalist Position = "quarterfinalist"
	PositionRoundOf16       Position = "round_of_16"
	PositionParticipation   Position = "participation"
)

var basePoints = map[Tier]int{
	Tier1: 1000,
	Tier2: 500,
	Tier3: 250,
	Tier4: 100,
}

// Multipliers are kept as whole percentages so rounding stays exact.
var multiplierPercent = map[Position]int{
	PositionWinner:          100,
	PositionSecond:          60,
	PositionThird:           40,
	PositionFourth:          30,
	PositionQuarterfinalist: 20,
	PositionRoundOf16:       10,
	PositionParticipation:   5,
}

var positionAliases = map[string]Position{
	"points_awarded": PositionParticipation,
	"runner_up":      PositionSecond,
	"quarter_final":  PositionQuarterfinalist,
	"quarterfinal":   PositionQuarterfinalist,
	"r16":            PositionRoundOf16,
}

// PointsError reports which tier/position pair was rejected.
type PointsError struct {
	Tier     Tier
	Position Position
}

func (e *PointsError) Error() string {
	return fmt.Sprintf("invalid tier or finishing position: tier=%q position=%q", e.Tier, e.Position)
}

func (e *PointsError) Is(target error) bool {
	return target == ErrInvalidTierOrPosition
}

func (t Tier) Valid() bool {
	_, ok := basePoints[t]
	return ok || t == TierHistoric
}

func (p Position) Valid() bool {
	_, ok := multiplierPercent[p]
	return ok
}

// ComputePoints returns round-half-up(base(tier) * multiplier(position)).
func ComputePoints(tier Tier, position Position) (int, error) {
	pct, posOK := multiplierPercent[position]
	if tier == TierHistoric && posOK {
		return 0, ErrHistoricPointsRequired
	}
	base, tierOK := basePoints[tier]
	if !tierOK || !posOK {
		return 0, &PointsError{Tier: tier, Position: position}
	}
	return (base*pct + 50) / 100, nil
}

// AwardPoints is ComputePoints with the historic bypass: historic results take
// the supplied literal, every other tier ignores it and uses the formula.
func AwardPoints(tier Tier, position Position, supplied *int) (int, error) {
	if tier != TierHistoric {
		return ComputePoints(tier, position)
	}
	if !position.Valid() {
		return 0, &PointsError{Tier: tier, Position: position}
	}
	if supplied == nil {
		return 0, ErrHistoricPointsRequired
	}
	if *supplied < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativePoints, *supplied)
	}
	return *supplied, nil
}

// ParseTier accepts "tier1", "Tier 1", "1" and "historic".
func ParseTier(s string) (Tier, error) {
	tag := strings.ReplaceAll(normalizeTag(s), "_", "")
	if len(tag) == 1 {
		tag = "tier" + tag
	}
	t := Tier(tag)
	if !t.Valid() {
		return "", &PointsError{Tier: Tier(s)}
	}
	return t, nil
}

// ParsePosition validates a finishing position tag.
func ParsePosition(s string) (Position, error) {
	tag := normalizeTag(s)
	if p, ok := positionAliases[tag]; ok {
		return p, nil
	}
	p := Position(tag)
	if !p.Valid() {
		return "", &PointsError{Position: Position(s)}
	}
	return p, nil
}
