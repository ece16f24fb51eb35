package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePoints_Table(t *testing.T) {
	expected := map[Tier]map[Position]int{
		Tier1: {PositionWinner: 1000, PositionSecond: 600, PositionThird: 400, PositionFourth: 300, PositionQuarterfinalist: 200, PositionRoundOf16: 100, PositionParticipation: 50},
		Tier2: {PositionWinner: 500, PositionSecond: 300, PositionThird: 200, PositionFourth: 150, PositionQuarterfinalist: 100, PositionRoundOf16: 50, PositionParticipation: 25},
		Tier3: {PositionWinner: 250, PositionSecond: 150, PositionThird: 100, PositionFourth: 75, PositionQuarterfinalist: 50, PositionRoundOf16: 25, PositionParticipation: 13},
		Tier4: {PositionWinner: 100, PositionSecond: 60, PositionThird: 40, PositionFourth: 30, PositionQuarterfinalist: 20, PositionRoundOf16: 10, PositionParticipation: 5},
	}

	for tier, positions := range expected {
		for position, want := range positions {
			got, err := ComputePoints(tier, position)
			require.NoError(t, err, "tier=%s position=%s", tier, position)
			assert.Equal(t, want, got, "tier=%s position=%s", tier, position)
		}
	}
}

func TestComputePoints_Tier2Quarterfinalist(t *testing.T) {
	points, err := ComputePoints(Tier2, PositionQuarterfinalist)
	require.NoError(t, err)
	assert.Equal(t, 100, points)
}

func TestComputePoints_Invalid(t *testing.T) {
	t.Run("unknown tier", func(t *testing.T) {
		_, err := ComputePoints(Tier("tier9"), PositionWinner)
		require.ErrorIs(t, err, ErrInvalidTierOrPosition)

		var pe *PointsError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, Tier("tier9"), pe.Tier)
	})

	t.Run("unknown position", func(t *testing.T) {
		_, err := ComputePoints(Tier1, Position("semifinalist"))
		assert.ErrorIs(t, err, ErrInvalidTierOrPosition)
	})

	t.Run("historic has no formula", func(t *testing.T) {
		_, err := ComputePoints(TierHistoric, PositionWinner)
		assert.ErrorIs(t, err, ErrHistoricPointsRequired)
	})
}

func TestAwardPoints(t *testing.T) {
	supplied := 321

	t.Run("historic takes the supplied literal", func(t *testing.T) {
		points, err := AwardPoints(TierHistoric, PositionThird, &supplied)
		require.NoError(t, err)
		assert.Equal(t, 321, points)
	})

	t.Run("historic without points fails", func(t *testing.T) {
		_, err := AwardPoints(TierHistoric, PositionThird, nil)
		assert.ErrorIs(t, err, ErrHistoricPointsRequired)
	})

	t.Run("historic with negative points fails", func(t *testing.T) {
		negative := -1
		_, err := AwardPoints(TierHistoric, PositionThird, &negative)
		assert.ErrorIs(t, err, ErrNegativePoints)
	})

	t.Run("formula tiers ignore supplied points", func(t *testing.T) {
		points, err := AwardPoints(Tier1, PositionWinner, &supplied)
		require.NoError(t, err)
		assert.Equal(t, 1000, points)
	})
}

func TestParseTierAndPosition(t *testing.T) {
	tier, err := ParseTier("Tier 3")
	require.NoError(t, err)
	assert.Equal(t, Tier3, tier)

	tier, err = ParseTier("2")
	require.NoError(t, err)
	assert.Equal(t, Tier2, tier)

	tier, err = ParseTier("historic")
	require.NoError(t, err)
	assert.Equal(t, TierHistoric, tier)

	_, err = ParseTier("gold")
	assert.ErrorIs(t, err, ErrInvalidTierOrPosition)

	position, err := ParsePosition("Round of 16")
	require.NoError(t, err)
	assert.Equal(t, PositionRoundOf16, position)

	position, err = ParsePosition("points_awarded")
	require.NoError(t, err)
	assert.Equal(t, PositionParticipation, position)

	_, err = ParsePosition("")
	assert.ErrorIs(t, err, ErrInvalidTierOrPosition)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Men's Mixed-Doubles")
	require.NoError(t, err)
	assert.Equal(t, MensMixedDoubles, c)
	assert.True(t, c.Allows(GenderMale))
	assert.False(t, c.Allows(GenderFemale))

	_, err = ParseCategory("mixed_doubles")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	g, err := ParseGender("F")
	require.NoError(t, err)
	assert.Equal(t, GenderFemale, g)

	_, err = ParseGender("x")
	assert.ErrorIs(t, err, ErrInvalidGender)
}
