package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCostPerWear(t *testing.T) {
	cost := 100.0
	item := ClothingItem{PurchaseCost: &cost, WearCount: 3}
	require.NotNil(t, item.CostPerWear())
	assert.Equal(t, 33.33, *item.CostPerWear())

	item.WearCount = 0
	assert.Nil(t, item.CostPerWear())
	assert.Nil(t, ClothingItem{WearCount: 4}.CostPerWear())
}

func TestDaysSinceWash(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.Nil(t, ClothingItem{}.DaysSinceWash(now))

	washed := now.Add(-72 * time.Hour)
	days := ClothingItem{LastWashed: &washed}.DaysSinceWash(now)
	require.NotNil(t, days)
	assert.Equal(t, 3, *days)
}

func TestUrgencyRankIsOrdered(t *testing.T) {
	levels := []WashUrgency{UrgencyNone, UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyUrgent}
	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Rank(), levels[i-1].Rank())
	}
}

func TestCustomThresholdsNeverNil(t *testing.T) {
	assert.NotNil(t, UserAccount{}.CustomThresholds())
	user := UserAccount{WashThresholds: datatypes.NewJSONType(map[string]int{"jeans": 7})}
	assert.Equal(t, 7, user.CustomThresholds()["jeans"])
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidSeason("all"))
	assert.False(t, ValidSeason("monsoon"))
	assert.True(t, ValidLaundryState("in_laundry"))
	assert.False(t, ValidLaundryState("lost"))
	assert.True(t, ValidatePlatformRaw("web"))
	assert.False(t, ValidatePlatformRaw("webos"))
}
