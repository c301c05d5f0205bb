package laundry

import (
	"testing"
	"time"

	"wewearapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func cleanItem(id uint, itemType, fabric string) models.ClothingItem {
	return models.ClothingItem{
		JsonModel:    models.JsonModel{ID: id},
		Name:         itemType,
		Type:         itemType,
		Fabric:       fabric,
		IsClean:      true,
		WashUrgency:  models.UrgencyNone,
		LaundryState: models.LaundryClean,
	}
}

func TestFabricAdjustment(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 4, th.For("jeans", "cotton"))
	assert.Equal(t, 5, th.For("jeans", "cotton blend"))
	assert.Equal(t, 6, th.For("sweater", "wool"))
	assert.Equal(t, 1, th.For("socks", "polyester"))
	assert.Equal(t, 1, th.For("t-shirt", "cotton"))
	assert.Equal(t, 3, th.For("kimono", ""))
}

func TestCustomThresholdOverridesDefault(t *testing.T) {
	th := DefaultThresholds().WithOverrides(map[string]int{"Jeans": 10})
	assert.Equal(t, 10, th.For("jeans", ""))
	assert.Equal(t, 12, th.For("jeans", "wool"))
	assert.Equal(t, 8, th.For("jacket", ""))
}

func TestUrgencyBuckets(t *testing.T) {
	assert.Equal(t, models.UrgencyNone, UrgencyFor(1, 5))
	assert.Equal(t, models.UrgencyLow, UrgencyFor(2, 5))
	assert.Equal(t, models.UrgencyMedium, UrgencyFor(3, 5))
	assert.Equal(t, models.UrgencyHigh, UrgencyFor(4, 5))
	assert.Equal(t, models.UrgencyUrgent, UrgencyFor(5, 5))
	assert.Equal(t, models.UrgencyUrgent, UrgencyFor(9, 5))
	assert.Equal(t, models.UrgencyNone, UrgencyFor(9, 0))
}

func TestRecordWearIsMonotonic(t *testing.T) {
	th := DefaultThresholds()
	item := cleanItem(1, "jeans", "denim")
	previous := 0
	var seen []models.WashUrgency
	for i := 0; i < 7; i++ {
		tr := RecordWear(&item, th, now)
		assert.GreaterOrEqual(t, tr.Current.Rank(), previous)
		previous = tr.Current.Rank()
		seen = append(seen, tr.Current)
	}
	assert.Equal(t, []models.WashUrgency{
		models.UrgencyNone, models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh,
		models.UrgencyUrgent, models.UrgencyUrgent, models.UrgencyUrgent,
	}, seen)
	assert.Equal(t, 7, item.WearCount)
	assert.Equal(t, 7, item.WearCountSinceWash)
	assert.True(t, item.NeedsWashing)
	assert.False(t, item.IsClean)
	require.NotNil(t, item.LastWorn)
}

func TestRecordWearFlags(t *testing.T) {
	th := DefaultThresholds()
	item := cleanItem(1, "jeans", "denim")
	for i := 0; i < 4; i++ {
		RecordWear(&item, th, now)
	}
	assert.Equal(t, models.UrgencyHigh, item.WashUrgency)
	assert.True(t, item.NeedsWashing)
	assert.True(t, item.IsClean, "high urgency keeps the item wearable")

	tr := RecordWear(&item, th, now)
	assert.Equal(t, models.UrgencyUrgent, tr.Current)
	assert.False(t, item.IsClean)
	assert.Equal(t, models.LaundryDirty, item.LaundryState)
}

func TestEscalated(t *testing.T) {
	assert.True(t, Transition{Previous: models.UrgencyMedium, Current: models.UrgencyHigh}.Escalated())
	assert.True(t, Transition{Previous: models.UrgencyHigh, Current: models.UrgencyUrgent}.Escalated())
	assert.False(t, Transition{Previous: models.UrgencyUrgent, Current: models.UrgencyUrgent}.Escalated())
	assert.False(t, Transition{Previous: models.UrgencyLow, Current: models.UrgencyMedium}.Escalated())
}

func TestMarkWashedResets(t *testing.T) {
	th := DefaultThresholds()
	for _, itemType := range []string{"t-shirt", "jeans", "coat", "shoes", "kimono"} {
		item := cleanItem(1, itemType, "cotton")
		for i := 0; i < 25; i++ {
			RecordWear(&item, th, now)
		}
		MarkWashed(&item, now)
		assert.Equal(t, 0, item.WearCountSinceWash)
		assert.Equal(t, 25, item.WearCount)
		assert.Equal(t, models.UrgencyNone, item.WashUrgency)
		assert.True(t, item.IsClean)
		assert.False(t, item.NeedsWashing)
		assert.Equal(t, models.LaundryClean, item.LaundryState)
		assert.Equal(t, models.UrgencyNone, Recommend(item, th).Urgency)
	}
}

func TestMarkDirty(t *testing.T) {
	th := DefaultThresholds()
	item := cleanItem(1, "coat", "")
	tr := MarkDirty(&item, th, now)
	assert.Equal(t, models.UrgencyNone, tr.Current)
	assert.False(t, item.IsClean)
	assert.True(t, item.NeedsWashing)
	assert.Equal(t, 1, item.WearCountSinceWash)
	assert.Equal(t, models.LaundryDirty, item.LaundryState)
}

func TestToggleCycle(t *testing.T) {
	item := cleanItem(1, "shirt", "")
	item.WearCountSinceWash = 3
	item.WashUrgency = models.UrgencyUrgent

	assert.Equal(t, models.LaundryDirty, Toggle(&item, now))
	assert.False(t, item.IsClean)
	assert.True(t, item.NeedsWashing)

	assert.Equal(t, models.LaundryInLaundry, Toggle(&item, now))
	assert.Equal(t, models.LaundryDrying, Toggle(&item, now))
	assert.False(t, item.IsClean)

	assert.Equal(t, models.LaundryClean, Toggle(&item, now))
	assert.True(t, item.IsClean)
	assert.Equal(t, 0, item.WearCountSinceWash)
	assert.Equal(t, models.UrgencyNone, item.WashUrgency)
}

func TestRecommend(t *testing.T) {
	item := cleanItem(1, "jeans", "")
	item.WearCountSinceWash = 2
	rec := Recommend(item, DefaultThresholds())
	assert.Equal(t, models.UrgencyLow, rec.Urgency)
	assert.Equal(t, 5, rec.Threshold)
	assert.Equal(t, 3, rec.WearsRemaining)
	assert.InDelta(t, 40.0, rec.WearPercentage, 0.001)
}

func TestBuildAlerts(t *testing.T) {
	longAgo := now.Add(-40 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)
	items := []models.ClothingItem{
		{JsonModel: models.JsonModel{ID: 1}, WashUrgency: models.UrgencyUrgent},
		{JsonModel: models.JsonModel{ID: 2}, WashUrgency: models.UrgencyHigh, IsClean: true},
		{JsonModel: models.JsonModel{ID: 3}, WashUrgency: models.UrgencyMedium, IsClean: true, LastWorn: &recent},
		{JsonModel: models.JsonModel{ID: 4}, WashUrgency: models.UrgencyNone, IsClean: true, LastWorn: &longAgo},
		{JsonModel: models.JsonModel{ID: 5}, WashUrgency: models.UrgencyLow, IsClean: true},
	}
	alerts := BuildAlerts(items, now, DefaultOverdueAfter)
	require.Len(t, alerts.Urgent, 1)
	require.Len(t, alerts.High, 1)
	require.Len(t, alerts.Medium, 1)
	require.Len(t, alerts.Overdue, 1)
	assert.Equal(t, uint(4), alerts.Overdue[0].ID)
	assert.Equal(t, 4, alerts.CleanCount)
	assert.Equal(t, 1, alerts.DirtyCount)
	assert.Equal(t, 5, alerts.Total)
}

func TestOverdueCountsWholeDays(t *testing.T) {
	partial := now.Add(-(30*24*time.Hour + time.Hour))
	full := now.Add(-31 * 24 * time.Hour)
	items := []models.ClothingItem{
		{JsonModel: models.JsonModel{ID: 1}, IsClean: true, LastWorn: &partial},
		{JsonModel: models.JsonModel{ID: 2}, IsClean: true, LastWorn: &full},
	}
	alerts := BuildAlerts(items, now, DefaultOverdueAfter)
	require.Len(t, alerts.Overdue, 1)
	assert.Equal(t, uint(2), alerts.Overdue[0].ID)
}

func TestSuggestWashLoadsPartition(t *testing.T) {
	items := []models.ClothingItem{
		{JsonModel: models.JsonModel{ID: 1}, Color: "white", Fabric: "cotton"},
		{JsonModel: models.JsonModel{ID: 2}, Color: "black", Fabric: "cotton"},
		{JsonModel: models.JsonModel{ID: 3}, Color: "cream", Fabric: "silk"},
	}
	loads := SuggestWashLoads(items)
	byName := map[string]WashLoad{}
	for _, load := range loads {
		byName[load.Name] = load
	}
	require.Len(t, loads, 3)
	assert.Equal(t, []uint{1}, byName[LoadWhites].ItemIDs)
	assert.Equal(t, []uint{2}, byName[LoadDarks].ItemIDs)
	assert.Equal(t, []uint{3}, byName[LoadDelicates].ItemIDs)
	_, hasColors := byName[LoadColors]
	assert.False(t, hasColors)
	assert.Equal(t, "hot", byName[LoadWhites].Temperature)
	assert.True(t, byName[LoadDelicates].SpecialCare)
}

func TestWashLoadPriority(t *testing.T) {
	items := []models.ClothingItem{
		{JsonModel: models.JsonModel{ID: 1}, Color: "red", WashUrgency: models.UrgencyUrgent},
		{JsonModel: models.JsonModel{ID: 2}, Color: "green", WashUrgency: models.UrgencyHigh},
		{JsonModel: models.JsonModel{ID: 3}, Color: "navy", WashUrgency: models.UrgencyHigh},
		{JsonModel: models.JsonModel{ID: 4}, Color: "red", DryCleanOnly: true, WashUrgency: models.UrgencyUrgent},
	}
	loads := SuggestWashLoads(items)
	require.Len(t, loads, 3)
	assert.Equal(t, LoadDarks, loads[0].Name)
	assert.Equal(t, "medium", loads[0].Priority)
	assert.Equal(t, LoadColors, loads[1].Name)
	assert.Equal(t, "high", loads[1].Priority)
	assert.Equal(t, 2, loads[1].Count)
	assert.Equal(t, LoadDelicates, loads[2].Name)
	assert.Equal(t, "high", loads[2].Priority)
}

func TestHealthScoreEmptyWardrobe(t *testing.T) {
	score := ComputeHealthScore(nil, now, DefaultOverdueAfter)
	assert.Equal(t, 100.0, score.Score)
	assert.Equal(t, emptyWardrobeMessage, score.Message)
}

func TestHealthScorePerfectWardrobe(t *testing.T) {
	recent := now.Add(-24 * time.Hour)
	items := []models.ClothingItem{
		{IsClean: true, LastWorn: &recent},
		{IsClean: true},
	}
	score := ComputeHealthScore(items, now, DefaultOverdueAfter)
	assert.Equal(t, 100.0, score.Score)
	assert.Equal(t, "Excellent! Your wardrobe is well-maintained.", score.Message)
	assert.Equal(t, []string{"Great job! Your wardrobe is in excellent condition"}, score.Recommendations)
}

func TestHealthScoreMixed(t *testing.T) {
	longAgo := now.Add(-60 * 24 * time.Hour)
	items := []models.ClothingItem{
		{IsClean: true},
		{IsClean: false, NeedsWashing: true},
		{IsClean: false, NeedsWashing: true, LastWorn: &longAgo},
		{IsClean: true},
	}
	score := ComputeHealthScore(items, now, DefaultOverdueAfter)
	// 50*0.5 + 30*0.5 + 20*0.75
	assert.Equal(t, 55.0, score.Score)
	assert.Equal(t, "Poor. Several items need washing.", score.Message)
	assert.Len(t, score.Recommendations, 3)
}
