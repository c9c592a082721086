package domain

import (
	"slices"
	"time"
)

// PackagePool is an ordered list of package ids waiting to be loaded.
// Iteration order decides ties during nearest-neighbor selection.
type PackagePool struct {
	Tier Tier
	IDs  []string
}

func (p *PackagePool) Len() int { return len(p.IDs) }

func (p *PackagePool) Add(id string) { p.IDs = append(p.IDs, id) }

func (p *PackagePool) Contains(id string) bool { return slices.Contains(p.IDs, id) }

// Remove deletes id from the pool, keeping the order of the rest.
func (p *PackagePool) Remove(id string) bool {
	i := slices.Index(p.IDs, id)
	if i < 0 {
		return false
	}
	p.IDs = slices.Delete(p.IDs, i, i+1)
	return true
}

// Pools holds the three deadline pools and the packages awaiting release.
type Pools struct {
	Priority1 *PackagePool
	Priority2 *PackagePool
	EndOfDay  *PackagePool
	Delayed   []string
}

// NewPools sorts packages into pools by status and tier, keeping input order.
func NewPools(pkgs []*Package) *Pools {
	pools := &Pools{
		Priority1: &PackagePool{Tier: TierPriority1},
		Priority2: &PackagePool{Tier: TierPriority2},
		EndOfDay:  &PackagePool{Tier: TierEndOfDay},
	}
	for _, p := range pkgs {
		switch p.Status {
		case StatusAwaitingRelease:
			pools.Delayed = append(pools.Delayed, p.PackageID)
		case StatusAtHub:
			pools.ForTier(p.Tier).Add(p.PackageID)
		}
	}
	return pools
}

// Ordered returns the deadline pools in loading priority.
func (p *Pools) Ordered() []*PackagePool {
	return []*PackagePool{p.Priority1, p.Priority2, p.EndOfDay}
}

func (p *Pools) ForTier(t Tier) *PackagePool {
	switch t {
	case TierPriority1:
		return p.Priority1
	case TierPriority2:
		return p.Priority2
	default:
		return p.EndOfDay
	}
}

// RemoveEverywhere deletes id from every deadline pool.
func (p *Pools) RemoveEverywhere(id string) {
	for _, pool := range p.Ordered() {
		pool.Remove(id)
	}
}

// Unassigned counts packages in the deadline pools.
func (p *Pools) Unassigned() int {
	return p.Priority1.Len() + p.Priority2.Len() + p.EndOfDay.Len()
}

// LatestRelease returns the latest release time among delayed packages.
func (p *Pools) LatestRelease(idx PackageIndex) (time.Time, error) {
	var latest time.Time
	for _, id := range p.Delayed {
		pkg, err := idx.Lookup(id)
		if err != nil {
			return time.Time{}, err
		}
		if pkg.ReleaseAt.After(latest) {
			latest = pkg.ReleaseAt
		}
	}
	return latest, nil
}

// PendingIDs lists every package id still in a pool, delayed first.
func (p *Pools) PendingIDs() []string {
	out := slices.Clone(p.Delayed)
	for _, pool := range p.Ordered() {
		out = append(out, pool.IDs...)
	}
	return out
}
