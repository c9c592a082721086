package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenarioOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	data := `
service_date: "2026-03-04"
hub_address: "1 Depot Way"
truck_capacity: 8
address_correction:
  package_id: "4"
  address: "9 Elm St"
  at: "11:00 AM"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "1 Depot Way", sc.HubAddress)
	assert.Equal(t, 8, sc.TruckCapacity)
	assert.Equal(t, 2, sc.TruckCount)
	assert.Equal(t, 18.0, sc.TruckSpeedMPH)
	require.NotNil(t, sc.AddressCorrection)
	assert.Equal(t, "4", sc.AddressCorrection.PackageID)

	at, err := sc.At(sc.AddressCorrection.At)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC), at)
}

func TestLoadScenarioEmptyPathUsesDefault(t *testing.T) {
	sc, err := LoadScenario("")
	require.NoError(t, err)
	assert.Equal(t, Default(), sc)
}

func TestValidateRejectsBadScenario(t *testing.T) {
	sc := Default()
	sc.TruckCount = 3
	assert.Error(t, sc.Validate())

	sc = Default()
	sc.StartTime = "25:99"
	assert.Error(t, sc.Validate())

	sc = Default()
	sc.ServiceDate = "tomorrow"
	assert.Error(t, sc.Validate())
}

func TestOnDayAcceptsLowercase(t *testing.T) {
	day := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	got, err := OnDay(day, "9:05 am")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 9, 5, 0, 0, time.UTC), got)
}

func TestParseClock(t *testing.T) {
	d, err := ParseClock("10:20 AM")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+20*time.Minute, d)

	d, err = ParseClock("12:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, d)

	_, err = ParseClock("EOD")
	assert.Error(t, err)
}
