package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parcel-dispatch-service/internal/domain"
)

func buildLocations(t *testing.T, addrs []string, dist map[[2]string]float64) []*domain.Location {
	t.Helper()
	byAddr := make(map[string]*domain.Location, len(addrs))
	locs := make([]*domain.Location, 0, len(addrs))
	for _, a := range addrs {
		l := domain.NewLocation(a, a, "")
		byAddr[a] = l
		locs = append(locs, l)
	}
	for pair, miles := range dist {
		byAddr[pair[0]].SetDistance(byAddr[pair[1]], miles)
	}
	return locs
}

func TestShortestPathPrefersDirectEdge(t *testing.T) {
	locs := buildLocations(t, []string{"Hub", "A", "B"}, map[[2]string]float64{
		{"Hub", "A"}: 3,
		{"Hub", "B"}: 5,
		{"A", "B"}:   4,
	})
	g, err := Build(locs)
	require.NoError(t, err)

	path, err := g.ShortestPath("Hub", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hub", "B"}, path)

	d, err := g.Distance("Hub", "B")
	require.NoError(t, err)
	assert.Equal(t, 5.0, d)
}

func TestShortestPathTakesDetour(t *testing.T) {
	g := New()
	for _, id := range []string{"Hub", "A", "B", "C"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("Hub", "A", 1))
	require.NoError(t, g.AddEdge("A", "B", 1))
	require.NoError(t, g.AddEdge("Hub", "B", 5))
	require.NoError(t, g.AddEdge("B", "C", 2))

	path, err := g.ShortestPath("Hub", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hub", "A", "B", "C"}, path)

	d, err := g.Distance("Hub", "C")
	require.NoError(t, err)
	assert.Equal(t, 4.0, d)

	self, err := g.ShortestPath("C", "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, self)
}

func TestShortestPathTieBreaksByInsertionOrder(t *testing.T) {
	g := New()
	for _, id := range []string{"S", "X", "Y", "T"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("S", "X", 1))
	require.NoError(t, g.AddEdge("S", "Y", 1))
	require.NoError(t, g.AddEdge("X", "T", 1))
	require.NoError(t, g.AddEdge("Y", "T", 1))

	// X is finalized before Y, so it claims T first and Y cannot improve on it.
	path, err := g.ShortestPath("S", "T")
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "X", "T"}, path)
}

func TestDistancePropertiesMatchFloydWarshall(t *testing.T) {
	addrs := []string{"Hub", "A", "B", "C", "D", "E"}
	locs := buildLocations(t, addrs, map[[2]string]float64{
		{"Hub", "A"}: 7.2, {"Hub", "B"}: 3.8, {"Hub", "C"}: 11.0,
		{"A", "B"}: 7.1, {"A", "D"}: 2.4, {"B", "C"}: 6.0,
		{"B", "D"}: 9.9, {"C", "E"}: 1.5, {"D", "E"}: 12.3,
		{"Hub", "E"}: 15.0,
	})
	g, err := Build(locs)
	require.NoError(t, err)

	want := floydWarshall(locs)
	for i, a := range addrs {
		for j, b := range addrs {
			dab, err := g.Distance(a, b)
			require.NoError(t, err)
			dba, err := g.Distance(b, a)
			require.NoError(t, err)

			assert.InDelta(t, want[i][j], dab, 1e-9, "%s->%s", a, b)
			assert.InDelta(t, dab, dba, 1e-9, "symmetry %s<->%s", a, b)

			for _, c := range addrs {
				dac, _ := g.Distance(a, c)
				dbc, _ := g.Distance(b, c)
				dab, _ := g.Distance(a, b)
				assert.LessOrEqual(t, dac, dab+dbc+1e-9, "triangle %s %s %s", a, b, c)
			}
		}
	}
}

func floydWarshall(locs []*domain.Location) [][]float64 {
	n := len(locs)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = math.Inf(1)
			if m, ok := locs[i].Distances[locs[j].Address]; ok && (m > 0 || i == j) {
				d[i][j] = m
			}
		}
	}
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if d[i][k]+d[k][j] < d[i][j] {
					d[i][j] = d[i][k] + d[k][j]
				}
			}
		}
	}
	return d
}

func TestDistanceReusesRunUntilSourceChanges(t *testing.T) {
	locs := buildLocations(t, []string{"Hub", "A", "B"}, map[[2]string]float64{
		{"Hub", "A"}: 3, {"Hub", "B"}: 5, {"A", "B"}: 4,
	})
	g, err := Build(locs)
	require.NoError(t, err)

	_, err = g.Distance("Hub", "A")
	require.NoError(t, err)
	hub, _ := g.Node("Hub")
	assert.Equal(t, 0.0, hub.Distance)

	_, err = g.Distance("A", "B")
	require.NoError(t, err)
	a, _ := g.Node("A")
	assert.Equal(t, 0.0, a.Distance)
	assert.Equal(t, 3.0, hub.Distance)

	g.Reset()
	assert.True(t, math.IsInf(a.Distance, 1))
	assert.Nil(t, a.Pred)
}

func TestGraphErrors(t *testing.T) {
	g := New()
	g.AddNode("Hub")
	g.AddNode("Island")

	err := g.AddEdge("Hub", "Island", -1)
	assert.ErrorIs(t, err, ErrNegativeWeight)

	err = g.AddEdge("Hub", "Nowhere", 1)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = g.ShortestPath("Hub", "Nowhere")
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = g.ShortestPath("Nowhere", "Hub")
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = g.ShortestPath("Hub", "Island")
	assert.ErrorIs(t, err, ErrUnreachable)

	d, err := g.Distance("Hub", "Island")
	require.NoError(t, err)
	assert.True(t, math.IsInf(d, 1))
}

func TestBuildRejectsUnknownLocation(t *testing.T) {
	hub := domain.NewLocation("Hub", "Hub", "")
	hub.Distances["Ghost"] = 2

	_, err := Build([]*domain.Location{hub})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestBuildAddsSymmetricEdges(t *testing.T) {
	locs := buildLocations(t, []string{"Hub", "A", "Island"}, map[[2]string]float64{
		{"Hub", "A"}: 3,
	})
	g, err := Build(locs)
	require.NoError(t, err)

	w, ok := g.Weight("Hub", "A")
	require.True(t, ok)
	assert.Equal(t, 3.0, w)

	w, ok = g.Weight("A", "Hub")
	require.True(t, ok)
	assert.Equal(t, 3.0, w)

	w, ok = g.Weight("Island", "Island")
	require.True(t, ok)
	assert.Equal(t, 0.0, w)

	_, ok = g.Weight("Hub", "Island")
	assert.False(t, ok)
	_, ok = g.Weight("Hub", "Ghost")
	assert.False(t, ok)
}
