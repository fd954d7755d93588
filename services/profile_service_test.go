package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"spark-feed/models"
)

func historyStores() (*fakeContentStore, *fakeInteractionStore, *fakeUserDirectory) {
	a := spotRow("a", 0, 0, testNow, "coffee", "art")
	b := spotRow("b", 0, 0, testNow, "art", "music")
	content := &fakeContentStore{byID: map[string]models.SpotRow{"a": a, "b": b}}

	interactions := &fakeInteractionStore{
		interactionsFn: func(f models.InteractionFilter) ([]models.InteractionRow, error) {
			if len(f.Actions) > 0 {
				return []models.InteractionRow{
					{ContentID: "a", ContentKind: models.KindSpot, Action: models.ActionShare},
					{ContentID: "b", ContentKind: models.KindSpot, Action: models.ActionLike},
					{ContentID: "b", ContentKind: models.KindSpot, Action: models.ActionComment},
				}, nil
			}
			return []models.InteractionRow{
				{ContentID: "a", ContentKind: models.KindSpot, Action: models.ActionView, CreatedAt: testNow},
				{ContentID: "s1", ContentKind: models.KindSpark, Action: models.ActionLike, CreatedAt: testNow},
				{ContentID: "b", ContentKind: models.KindSpot, Action: models.ActionLike, CreatedAt: testNow},
			}, nil
		},
		locations: []models.LocationPoint{{Lat: 1, Lon: 2, Timestamp: testNow}},
		aggregates: &models.EngagementAggregates{
			AvgSessionMinutes: 12.5,
			ContentTypeCounts: map[models.ContentKind]int{models.KindSpot: 1, models.KindSpark: 3},
			HourOfDayCounts:   map[int]int{9: 4, 30: 1},
		},
	}

	users := &fakeUserDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Interests: models.JoinTags([]string{"jazz", "coffee"})},
	}}
	return content, interactions, users
}

func TestProfileBuilder_Build(t *testing.T) {
	content, interactions, users := historyStores()
	b := NewProfileBuilder(content, interactions, users, fixedClock(testNow))

	p, err := b.Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if expected := []string{"jazz", "coffee", "art", "music"}; !reflect.DeepEqual(p.Interests, expected) {
		t.Errorf("Interests = %v, expected %v", p.Interests, expected)
	}
	// art 3+1+2, coffee 3, music 1+2
	if expected := []string{"art", "coffee", "music"}; !reflect.DeepEqual(p.PreferredTags, expected) {
		t.Errorf("PreferredTags = %v, expected %v", p.PreferredTags, expected)
	}
	if len(p.RecentInteractions) != 3 || p.RecentInteractions[1].ContentKind != models.KindSpark {
		t.Errorf("RecentInteractions = %+v", p.RecentInteractions)
	}
	if len(p.LocationHistory) != 1 {
		t.Errorf("LocationHistory = %+v, expected one point", p.LocationHistory)
	}

	m := p.EngagementMetrics
	if m.AvgSessionMinutes != 12.5 {
		t.Errorf("AvgSessionMinutes = %v, expected 12.5", m.AvgSessionMinutes)
	}
	if m.ContentTypePreference.SpotRatio != 0.25 || m.ContentTypePreference.SparkRatio != 0.75 {
		t.Errorf("ContentTypePreference = %+v, expected 0.25/0.75", m.ContentTypePreference)
	}
	if len(m.HourOfDayActivity) != 24 || m.HourOfDayActivity[9] != 4 {
		t.Errorf("HourOfDayActivity = %v, expected 24 hours with 4 at 9", m.HourOfDayActivity)
	}
}

func TestProfileBuilder_NoHistory(t *testing.T) {
	b := NewProfileBuilder(&fakeContentStore{}, &fakeInteractionStore{}, &fakeUserDirectory{}, fixedClock(testNow))

	p, err := b.Build(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(p.Interests) != 0 || len(p.PreferredTags) != 0 || p.LocationHistory == nil {
		t.Errorf("Build() = %+v, expected an empty profile", p)
	}
	pref := p.EngagementMetrics.ContentTypePreference
	if pref.SpotRatio != 0.6 || pref.SparkRatio != 0.4 {
		t.Errorf("ContentTypePreference = %+v, expected the 0.6/0.4 default", pref)
	}
	if len(p.EngagementMetrics.HourOfDayActivity) != 24 {
		t.Errorf("HourOfDayActivity has %d hours, expected 24", len(p.EngagementMetrics.HourOfDayActivity))
	}
}

func TestProfileBuilder_FailingSourcesDegrade(t *testing.T) {
	content, interactions, users := historyStores()
	interactions.aggregatesErr = errors.New("timeout")
	interactions.locationsErr = errors.New("timeout")
	content.byIDsErr = errors.New("timeout")
	users.err = errors.New("timeout")

	p, err := NewProfileBuilder(content, interactions, users, fixedClock(testNow)).Build(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Build() error = %v, expected a degraded profile", err)
	}
	if len(p.Interests) != 0 || len(p.PreferredTags) != 0 {
		t.Errorf("Interests = %v, PreferredTags = %v, expected none without users or spot tags", p.Interests, p.PreferredTags)
	}
	if len(p.RecentInteractions) != 3 {
		t.Errorf("RecentInteractions = %d, expected the healthy source to survive", len(p.RecentInteractions))
	}
	if p.EngagementMetrics.ContentTypePreference.SpotRatio != 0.6 {
		t.Errorf("SpotRatio = %v, expected the default", p.EngagementMetrics.ContentTypePreference.SpotRatio)
	}
}

func TestProfileBuilder_CancelledRequestFails(t *testing.T) {
	_, interactions, _ := historyStores()
	interactions.locationsErr = errors.New("interrupted")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProfileBuilder(&fakeContentStore{}, interactions, &fakeUserDirectory{}, fixedClock(testNow)).Build(ctx, "u1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, expected context.Canceled", err)
	}
}

func TestPreferredTags_Limit(t *testing.T) {
	tags := map[string][]string{"x": {"e", "d", "c", "b", "a"}}
	rows := []models.InteractionRow{
		{ContentID: "x", Action: models.ActionLike},
		{ContentID: "x", Action: models.ActionView},
	}

	if got := preferredTags(rows, tags, 3); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("preferredTags() = %v, expected alphabetical ties capped at 3", got)
	}
}
