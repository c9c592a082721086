package seedfile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-dispatch-service/internal/domain"
)

const sample = `{
  "locations": [
    {"address": "Hub", "name": "Depot", "zip": "84107", "distances": {"Hub": 0}},
    {"address": "A", "name": "Park", "zip": "84106", "distances": {"Hub": 3.5}}
  ],
  "packages": [
    {"package_id": " 1 ", "address": "A", "deadline": "10:30 AM", "weight_kg": 2, "must_ship_with": ["2"]},
    {"package_id": "2", "address": "A", "deadline": "EOD", "release_at": "9:05 am", "required_truck": 2}
  ]
}`

var day = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

func TestParseAndConvert(t *testing.T) {
	seed, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, seed.Packages, 2)
	assert.Equal(t, "1", seed.Packages[0].PackageID)

	locs, err := ToLocations(seed.Locations)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, 3.5, locs[0].Distances["A"])
	assert.Equal(t, 3.5, locs[1].Distances["Hub"])
	assert.Equal(t, 0.0, locs[1].Distances["A"])

	src := NewSource(seed)
	pkgs, err := src.ListPackages(context.Background(), day)
	require.NoError(t, err)

	first, second := pkgs[0], pkgs[1]
	assert.Equal(t, day.Add(10*time.Hour+30*time.Minute), first.Deadline)
	assert.True(t, first.ReleaseAt.IsZero())
	assert.Equal(t, []string{"2"}, first.Siblings)

	assert.True(t, second.Deadline.IsZero(), "end of day has no explicit deadline")
	assert.Equal(t, day.Add(9*time.Hour+5*time.Minute), second.ReleaseAt)
	assert.Equal(t, 2, second.RequiredTruck)
}

func TestParseRejectsBadSeeds(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{
			name: "no locations",
			json: `{"locations": [], "packages": []}`,
		},
		{
			name: "distance to unknown location",
			json: `{"locations": [{"address": "Hub", "distances": {"B": 1}}]}`,
			want: domain.ErrLocationNotFound,
		},
		{
			name: "negative distance",
			json: `{"locations": [{"address": "Hub"}, {"address": "A", "distances": {"Hub": -1}}]}`,
		},
		{
			name: "duplicate package",
			json: `{"locations": [{"address": "Hub"}], "packages": [
				{"package_id": "1", "address": "Hub"}, {"package_id": "1", "address": "Hub"}]}`,
		},
		{
			name: "bad deadline",
			json: `{"locations": [{"address": "Hub"}], "packages": [
				{"package_id": "1", "address": "Hub", "deadline": "noon"}]}`,
		},
		{
			name: "unknown sibling",
			json: `{"locations": [{"address": "Hub"}], "packages": [
				{"package_id": "1", "address": "Hub", "must_ship_with": ["7"]}]}`,
			want: domain.ErrPackageNotFound,
		},
		{
			name: "malformed json",
			json: `{"locations": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.json")
	assert.Error(t, err)
}
