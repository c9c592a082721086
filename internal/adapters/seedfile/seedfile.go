// Package seedfile reads the JSON seed describing a service day: every
// location with its distance row, and every package with its notes.
package seedfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"parcel-dispatch-service/internal/config"
	"parcel-dispatch-service/internal/domain"
	"strings"
	"time"
)

// EndOfDay marks a package with no explicit deadline.
const EndOfDay = "EOD"

type LocationSeed struct {
	Address   string             `json:"address"`
	Name      string             `json:"name"`
	Zip       string             `json:"zip"`
	Distances map[string]float64 `json:"distances"`
}

type PackageSeed struct {
	PackageID     string   `json:"package_id"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Zip           string   `json:"zip"`
	Deadline      string   `json:"deadline"`
	WeightKg      float64  `json:"weight_kg"`
	RequiredTruck int      `json:"required_truck,omitempty"`
	MustShipWith  []string `json:"must_ship_with,omitempty"`
	ReleaseAt     string   `json:"release_at,omitempty"`
}

// DeadlineOffset returns the deadline as an offset from midnight.
// ok is false for end-of-day packages.
func (p PackageSeed) DeadlineOffset() (offset time.Duration, ok bool, err error) {
	d := strings.TrimSpace(p.Deadline)
	if d == "" || strings.EqualFold(d, EndOfDay) {
		return 0, false, nil
	}
	offset, err = config.ParseClock(d)
	if err != nil {
		return 0, false, fmt.Errorf("package_id=%s deadline: %w", p.PackageID, err)
	}
	return offset, true, nil
}

// ReleaseOffset returns the release time as an offset from midnight.
// ok is false when the package is at the hub from the start of the day.
func (p PackageSeed) ReleaseOffset() (offset time.Duration, ok bool, err error) {
	r := strings.TrimSpace(p.ReleaseAt)
	if r == "" {
		return 0, false, nil
	}
	offset, err = config.ParseClock(r)
	if err != nil {
		return 0, false, fmt.Errorf("package_id=%s release_at: %w", p.PackageID, err)
	}
	return offset, true, nil
}

type Seed struct {
	Locations []LocationSeed `json:"locations"`
	Packages  []PackageSeed  `json:"packages"`
}

// Load reads and validates a seed file.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}
	seed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load seed %q: %w", path, err)
	}
	return seed, nil
}

func Parse(data []byte) (*Seed, error) {
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &seed, nil
}

// Validate trims identifiers and rejects seeds the store cannot hold.
func (s *Seed) Validate() error {
	if len(s.Locations) == 0 {
		return errors.New("seed has no locations")
	}

	addresses := make(map[string]struct{}, len(s.Locations))
	for i := range s.Locations {
		loc := &s.Locations[i]
		loc.Address = strings.TrimSpace(loc.Address)
		if loc.Address == "" {
			return fmt.Errorf("location at index %d: address cannot be empty", i+1)
		}
		if _, dup := addresses[loc.Address]; dup {
			return fmt.Errorf("location at index %d: duplicate address %q", i+1, loc.Address)
		}
		addresses[loc.Address] = struct{}{}
	}
	for _, loc := range s.Locations {
		for other, miles := range loc.Distances {
			if _, ok := addresses[other]; !ok {
				return fmt.Errorf("location %q lists distance to %q: %w", loc.Address, other, domain.ErrLocationNotFound)
			}
			if miles < 0 {
				return fmt.Errorf("location %q: negative distance %v to %q", loc.Address, miles, other)
			}
		}
	}

	ids := make(map[string]struct{}, len(s.Packages))
	for i := range s.Packages {
		p := &s.Packages[i]
		p.PackageID = strings.TrimSpace(p.PackageID)
		p.Address = strings.TrimSpace(p.Address)
		if p.PackageID == "" {
			return fmt.Errorf("package at index %d: package_id cannot be empty", i+1)
		}
		if _, dup := ids[p.PackageID]; dup {
			return fmt.Errorf("package at index %d: duplicate package_id %q", i+1, p.PackageID)
		}
		ids[p.PackageID] = struct{}{}
		if p.Address == "" {
			return fmt.Errorf("package_id=%s: address cannot be empty", p.PackageID)
		}
		if p.RequiredTruck < 0 {
			return fmt.Errorf("package_id=%s: invalid required_truck %d", p.PackageID, p.RequiredTruck)
		}
		if _, _, err := p.DeadlineOffset(); err != nil {
			return err
		}
		if _, _, err := p.ReleaseOffset(); err != nil {
			return err
		}
	}
	for _, p := range s.Packages {
		for _, sib := range p.MustShipWith {
			if _, ok := ids[sib]; !ok {
				return fmt.Errorf("package_id=%s must ship with %q: %w", p.PackageID, sib, domain.ErrPackageNotFound)
			}
		}
	}

	return nil
}

// ToLocations builds domain locations with symmetric distances.
func ToLocations(seeds []LocationSeed) ([]*domain.Location, error) {
	locs := make([]*domain.Location, 0, len(seeds))
	byAddr := make(map[string]*domain.Location, len(seeds))
	for _, s := range seeds {
		loc := domain.NewLocation(s.Address, s.Name, s.Zip)
		locs = append(locs, loc)
		byAddr[s.Address] = loc
	}
	for _, s := range seeds {
		from := byAddr[s.Address]
		for addr, miles := range s.Distances {
			to, ok := byAddr[addr]
			if !ok {
				return nil, fmt.Errorf("to locations: %q lists distance to %q: %w", s.Address, addr, domain.ErrLocationNotFound)
			}
			from.SetDistance(to, miles)
		}
	}
	return locs, nil
}

// ToPackage resolves a seed row on the service day.
func ToPackage(p PackageSeed, day time.Time) (*domain.Package, error) {
	pkg := &domain.Package{
		PackageID:     p.PackageID,
		Address:       p.Address,
		City:          p.City,
		State:         p.State,
		Zip:           p.Zip,
		WeightKg:      p.WeightKg,
		RequiredTruck: p.RequiredTruck,
		Siblings:      append([]string(nil), p.MustShipWith...),
	}

	deadline, ok, err := p.DeadlineOffset()
	if err != nil {
		return nil, err
	}
	if ok {
		pkg.Deadline = day.Add(deadline)
	}

	release, ok, err := p.ReleaseOffset()
	if err != nil {
		return nil, err
	}
	if ok {
		pkg.ReleaseAt = day.Add(release)
	}

	return pkg, nil
}

// Source serves a parsed seed directly, without a database.
type Source struct {
	Seed *Seed
}

func NewSource(seed *Seed) *Source {
	return &Source{Seed: seed}
}

func (s *Source) ListLocations(ctx context.Context) ([]*domain.Location, error) {
	return ToLocations(s.Seed.Locations)
}

func (s *Source) ListPackages(ctx context.Context, day time.Time) ([]*domain.Package, error) {
	pkgs := make([]*domain.Package, 0, len(s.Seed.Packages))
	for _, p := range s.Seed.Packages {
		pkg, err := ToPackage(p, day)
		if err != nil {
			return nil, fmt.Errorf("list packages: %w", err)
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}
