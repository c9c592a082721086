package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ClockLayout is the time-of-day format used in scenario and seed files.
const ClockLayout = "3:04 PM"

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// AddressCorrection replaces one package's destination once the
// simulated clock reaches At.
type AddressCorrection struct {
	PackageID string `yaml:"package_id"`
	Address   string `yaml:"address"`
	At        string `yaml:"at"`
}

// Scenario holds the fixed constants of one service day.
type Scenario struct {
	ServiceDate       string             `yaml:"service_date"`
	HubAddress        string             `yaml:"hub_address"`
	StartTime         string             `yaml:"start_time"`
	TruckCount        int                `yaml:"truck_count"`
	TruckCapacity     int                `yaml:"truck_capacity"`
	TruckSpeedMPH     float64            `yaml:"truck_speed_mph"`
	Priority1Cutoff   string             `yaml:"priority_1_cutoff"`
	Priority2Cutoff   string             `yaml:"priority_2_cutoff"`
	EndOfDay          string             `yaml:"end_of_day"`
	AddressCorrection *AddressCorrection `yaml:"address_correction"`
}

// Default returns the scenario used when no file is supplied.
func Default() Scenario {
	return Scenario{
		ServiceDate:     "2026-01-02",
		HubAddress:      "4001 South 700 East",
		StartTime:       "8:00 AM",
		TruckCount:      2,
		TruckCapacity:   16,
		TruckSpeedMPH:   18,
		Priority1Cutoff: "9:00 AM",
		Priority2Cutoff: "10:30 AM",
		EndOfDay:        "11:59 PM",
		AddressCorrection: &AddressCorrection{
			PackageID: "9",
			Address:   "410 S State St",
			At:        "10:20 AM",
		},
	}
}

// LoadScenario reads a YAML scenario, filling unset fields from Default.
// An empty path returns the default scenario.
func LoadScenario(path string) (Scenario, error) {
	sc := Default()
	if strings.TrimSpace(path) == "" {
		return sc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("load scenario: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("load scenario: parse %q: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("load scenario: %w", err)
	}
	return sc, nil
}

// Validate checks the scenario for values the simulation cannot run with.
func (s Scenario) Validate() error {
	if strings.TrimSpace(s.HubAddress) == "" {
		return errors.New("hub_address is required")
	}
	if s.TruckCount != 2 {
		return fmt.Errorf("truck_count must be 2, got %d", s.TruckCount)
	}
	if s.TruckCapacity < 1 {
		return fmt.Errorf("truck_capacity must be positive, got %d", s.TruckCapacity)
	}
	if s.TruckSpeedMPH <= 0 {
		return fmt.Errorf("truck_speed_mph must be positive, got %v", s.TruckSpeedMPH)
	}
	if _, err := s.Day(); err != nil {
		return err
	}
	for name, v := range map[string]string{
		"start_time":        s.StartTime,
		"priority_1_cutoff": s.Priority1Cutoff,
		"priority_2_cutoff": s.Priority2Cutoff,
		"end_of_day":        s.EndOfDay,
	} {
		if _, err := time.Parse(ClockLayout, v); err != nil {
			return fmt.Errorf("%s: invalid time %q: %w", name, v, err)
		}
	}
	if c := s.AddressCorrection; c != nil {
		if c.PackageID == "" || c.Address == "" {
			return errors.New("address_correction needs package_id and address")
		}
		if _, err := time.Parse(ClockLayout, c.At); err != nil {
			return fmt.Errorf("address_correction.at: invalid time %q: %w", c.At, err)
		}
	}
	return nil
}

// Day returns midnight UTC of the service date.
func (s Scenario) Day() (time.Time, error) {
	d, err := time.Parse("2006-01-02", s.ServiceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("service_date: invalid date %q: %w", s.ServiceDate, err)
	}
	return d, nil
}

// At resolves a time of day such as "10:20 AM" on the service date.
func (s Scenario) At(clock string) (time.Time, error) {
	day, err := s.Day()
	if err != nil {
		return time.Time{}, err
	}
	return OnDay(day, clock)
}

// OnDay resolves a time of day on the given date.
func OnDay(day time.Time, clock string) (time.Time, error) {
	offset, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).Add(offset), nil
}

// ParseClock returns the offset from midnight of a time of day such as "9:05 AM".
func ParseClock(clock string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", clock, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
