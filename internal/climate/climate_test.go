package climate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilClientFallsBackToSeason(t *testing.T) {
	var c *Client
	require.Equal(t, RechargeModifier(Summer), c.RechargeScale(Summer))
	require.Equal(t, RechargeModifier(Spring), c.RechargeScale(Spring))
}

func TestNewClientRequiresKey(t *testing.T) {
	require.Nil(t, NewClient("", "Utrecht,NL"))
	require.NotNil(t, NewClient("key", ""))
}

func TestScaleFromConditions(t *testing.T) {
	require.Equal(t, 1.8, ScaleFromConditions(&Conditions{IsStorm: true}, Summer))
	require.Equal(t, 1.4, ScaleFromConditions(&Conditions{IsRain: true}, Winter))
	require.Equal(t, 0.6, ScaleFromConditions(&Conditions{Temp: 35}, Spring))
	require.Equal(t, RechargeModifier(Autumn), ScaleFromConditions(&Conditions{Temp: 15}, Autumn))
	require.Equal(t, RechargeModifier(Winter), ScaleFromConditions(nil, Winter))
}

func TestSeasonalModifiers(t *testing.T) {
	require.Greater(t, RechargeModifier(Spring), RechargeModifier(Summer), "spring is wetter than summer")
	require.Greater(t, GrowthModifier(Spring), GrowthModifier(Winter))
	require.Equal(t, "Winter", SeasonName(Winter))
	require.Equal(t, "Unknown", SeasonName(Season(9)))
}
