package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-dispatch-service/internal/adapters/seedfile"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"parcel-dispatch-service/internal/platform/metrics"
)

func TestBuildSimulationRunsSeededServiceDay(t *testing.T) {
	seed, err := seedfile.Load("../../data/seeds/service_day.json")
	require.NoError(t, err)
	src := seedfile.NewSource(seed)

	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	sc := config.Default()
	sim, err := BuildSimulation(context.Background(), sc, src, src, collector)
	require.NoError(t, err)

	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(seed.Packages), report.Delivered)
	assert.Equal(t, 0, report.PackagesLeft)
	assert.Equal(t, float64(report.Delivered),
		testutil.ToFloat64(collector.Deliveries.WithLabelValues("1"))+
			testutil.ToFloat64(collector.Deliveries.WithLabelValues("2")))
	assert.Equal(t, float64(len(report.Late)), testutil.ToFloat64(collector.LateDeliveries))

	endOfDay := serviceDay.Add(24*time.Hour - time.Nanosecond)
	byID := make(map[string]domain.PackageSnapshot)
	for _, s := range sim.Packages(endOfDay) {
		byID[s.PackageID] = s
		assert.Equal(t, domain.StatusDelivered, s.Status, "package %s", s.PackageID)
		if !s.ReleaseAt.IsZero() {
			assert.Equal(t, s.ReleaseAt, s.AtHubAt, "package %s", s.PackageID)
			assert.False(t, s.EnRouteAt.Before(s.ReleaseAt), "package %s", s.PackageID)
		}
	}

	assert.Equal(t, 2, byID["3"].TruckID)
	assert.Equal(t, 2, byID["18"].TruckID)
	assert.Equal(t, domain.TierPriority1, byID["15"].Tier)
	assert.Equal(t, domain.TierEndOfDay, byID["2"].Tier)

	group := []string{"13", "14", "15", "16", "19", "20"}
	for _, id := range group {
		assert.Equal(t, byID[group[0]].TruckID, byID[id].TruckID, "package %s", id)
	}

	corrected := byID["9"]
	assert.Equal(t, "410 S State St", corrected.Address)
	assert.False(t, corrected.EnRouteAt.Before(clock(10, 20)))

	before, err := sim.Package("9", clock(10, 0))
	require.NoError(t, err)
	assert.Equal(t, "300 State St", before.Address)
	assert.Equal(t, domain.StatusAwaitingRelease, before.Status)
}

func TestBuildSimulationRejectsCorrectionForUnknownPackage(t *testing.T) {
	seed, err := seedfile.Load("../../data/seeds/service_day.json")
	require.NoError(t, err)
	src := seedfile.NewSource(seed)

	sc := config.Default()
	sc.AddressCorrection.PackageID = "404"

	_, err = BuildSimulation(context.Background(), sc, src, src, nil)
	assert.ErrorIs(t, err, domain.ErrPackageNotFound)
}
