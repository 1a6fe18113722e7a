package domain

import (
	"fmt"
	"strings"
)

// HintsFor returns the hint candidates for a location
func HintsFor(loc Location) []string {
	theme := "exploration"
	switch {
	case strings.Contains(loc.Name, "Geode"):
		theme = "Geodes"
	case strings.Contains(loc.Name, "Tower"):
		theme = "combat"
	}

	activity := "complete objectives"
	switch {
	case strings.Contains(loc.Name, "Hub"):
		activity = "hang out"
	case strings.Contains(loc.Name, "Delves"):
		activity = "farm gems"
	}

	return []string{
		fmt.Sprintf("The location is related to %s", theme),
		fmt.Sprintf("This place has %d different roles", len(loc.Roles)),
		fmt.Sprintf("Players often %s here", activity),
	}
}

// RequestHint hands the spy one clue per round once enough time has passed
func (r *Room) RequestHint(name string, catalog Catalog, rng Randomizer) (string, error) {
	if r.Status != PhasePlaying {
		return "", ErrInvalidPhase
	}
	role, ok := r.Roles[name]
	if !ok || !role.IsSpy {
		return "", ErrNotSpy
	}
	if r.SpyHintUsed {
		return "", ErrHintUsed
	}
	if r.Timer > r.Settings.HintAfter {
		return "", &HintLockedError{UnlocksAt: r.Settings.HintAfter, Timer: r.Timer}
	}

	loc, ok := catalog.Find(r.RoundLocation())
	if !ok {
		return "", ErrUnknownLocation
	}

	hints := HintsFor(loc)
	r.SpyHintUsed = true
	return hints[rng.Intn(len(hints))], nil
}
