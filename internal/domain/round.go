package domain

import (
	"slices"
	"time"
)

// EndReason says how a round finished
type EndReason string

const (
	EndByVote     EndReason = "vote"
	EndBySpyGuess EndReason = "spy_guess"
)

// Outcome is the decided result of a round, before scoring
type Outcome struct {
	Reason  EndReason
	Accused string // set when the round ended by vote
	Guess   string // set when the spy guessed
	SpyWon  bool
}

// RoundResult is the transient report shown when a round ends. It is never stored.
type RoundResult struct {
	Round       int               `json:"round"`
	Reason      EndReason         `json:"reason"`
	Accused     string            `json:"accused,omitempty"`
	Guess       string            `json:"guess,omitempty"`
	Spy         string            `json:"spy"`
	Location    string            `json:"location"`
	SpyWon      bool              `json:"spyWon"`
	ScoreDeltas map[string]int    `json:"scoreDeltas"`
	Votes       map[string]string `json:"votes,omitempty"`
}

// StartRound deals a location, a spy and roles to every online player
func (r *Room) StartRound(catalog Catalog, rng Randomizer) error {
	if !r.Status.CanTransitionTo(PhasePlaying) {
		return ErrInvalidPhase
	}

	online := r.OnlinePlayerNames()
	if len(online) < r.Settings.MinPlayers {
		return &PlayersNeededError{Need: r.Settings.MinPlayers, Online: len(online)}
	}
	if len(catalog) == 0 {
		return ErrUnknownLocation
	}

	location := catalog[rng.Intn(len(catalog))]
	spy := online[rng.Intn(len(online))]
	r.Roles = AssignRoles(online, spy, location)

	r.Status = PhasePlaying
	r.Timer = r.Settings.RoundDuration
	r.TimerRunning = true
	r.CurrentRound++
	r.Votes = make(map[string]string)
	r.Messages = nil
	r.SpyHintUsed = false
	r.LastVoteCallTime = time.Time{}

	return nil
}

// AssignRoles gives the spy the spy label and hands the location's roles out
// round-robin to everyone else, in the order given.
func AssignRoles(players []string, spy string, location Location) map[string]RoleAssignment {
	roles := make(map[string]RoleAssignment, len(players))
	i := 0
	for _, name := range players {
		if name == spy {
			roles[name] = spyAssignment()
			continue
		}
		label := ""
		if len(location.Roles) > 0 {
			label = location.Roles[i%len(location.Roles)]
		}
		roles[name] = civilianAssignment(label, location.Name)
		i++
	}
	return roles
}

// Tick advances the round timer by one second. It reports whether the
// timer ran out and moved the room into voting.
func (r *Room) Tick() bool {
	if !r.TimerRunning || !r.Status.CanTransitionTo(PhaseVoting) {
		return false
	}

	if r.Timer > 0 {
		r.Timer--
	}
	if r.Timer > 0 {
		return false
	}

	r.Timer = 0
	r.Status = PhaseVoting
	r.TimerRunning = false
	return true
}

// CallVote ends the discussion early, subject to the vote-call cooldown
func (r *Room) CallVote(name string, now time.Time) error {
	if !r.Status.CanTransitionTo(PhaseVoting) {
		return ErrInvalidPhase
	}
	if _, err := r.GetPlayer(name); err != nil {
		return err
	}
	if left := r.VoteCooldownLeft(now); left > 0 {
		return &CooldownError{Remaining: left}
	}

	r.Status = PhaseVoting
	r.TimerRunning = false
	r.LastVoteCallTime = now
	return nil
}

// VoteCooldownLeft returns how long until the next vote call is accepted
func (r *Room) VoteCooldownLeft(now time.Time) time.Duration {
	if r.LastVoteCallTime.IsZero() {
		return 0
	}
	left := r.Settings.VoteCooldown - now.Sub(r.LastVoteCallTime)
	if left < 0 {
		return 0
	}
	return left
}

// CastVote records one accusation per voter
func (r *Room) CastVote(voter, accused string) error {
	if r.Status != PhaseVoting {
		return ErrInvalidPhase
	}
	if _, ok := r.Roles[voter]; !ok {
		return ErrNotInRound
	}
	if voter == accused {
		return ErrCannotVoteSelf
	}
	if _, ok := r.Roles[accused]; !ok {
		return ErrInvalidTarget
	}
	if _, voted := r.Votes[voter]; voted {
		return ErrAlreadyVoted
	}

	if r.Votes == nil {
		r.Votes = make(map[string]string)
	}
	r.Votes[voter] = accused
	return nil
}

// AllVoted reports whether every online player holding a role has voted
func (r *Room) AllVoted() bool {
	if r.Status != PhaseVoting {
		return false
	}
	expected := 0
	for _, name := range r.OnlinePlayerNames() {
		if _, ok := r.Roles[name]; !ok {
			continue
		}
		expected++
		if _, voted := r.Votes[name]; !voted {
			return false
		}
	}
	return expected > 0
}

// Tally returns the most accused player. Ties go to the name that sorts first.
func Tally(votes map[string]string) string {
	counts := make(map[string]int)
	for _, accused := range votes {
		counts[accused]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)

	best, bestCount := "", 0
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// ResolveVotes tallies a completed vote and ends the round
func (r *Room) ResolveVotes() (*RoundResult, error) {
	if r.Status != PhaseVoting {
		return nil, ErrInvalidPhase
	}
	if !r.AllVoted() {
		return nil, ErrVotesPending
	}

	accused := Tally(r.Votes)
	caught := r.Roles[accused].IsSpy
	return r.EndRound(Outcome{Reason: EndByVote, Accused: accused, SpyWon: !caught})
}

// SpyGuess lets the spy reveal themselves and name the location
func (r *Room) SpyGuess(name, guess string, catalog Catalog) (*RoundResult, error) {
	if r.Status != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	role, ok := r.Roles[name]
	if !ok || !role.IsSpy {
		return nil, ErrNotSpy
	}

	loc, ok := catalog.Resolve(guess)
	if !ok {
		return nil, ErrUnknownLocation
	}

	correct := loc.Name == r.RoundLocation()
	return r.EndRound(Outcome{Reason: EndBySpyGuess, Guess: loc.Name, SpyWon: correct})
}

// EndRound scores the outcome once and returns the room to the lobby
func (r *Room) EndRound(outcome Outcome) (*RoundResult, error) {
	if !r.Status.CanTransitionTo(PhaseLobby) {
		return nil, ErrInvalidPhase
	}
	if r.scoredRound == r.CurrentRound {
		return nil, ErrRoundAlreadyResolved
	}

	result := &RoundResult{
		Round:    r.CurrentRound,
		Reason:   outcome.Reason,
		Accused:  outcome.Accused,
		Guess:    outcome.Guess,
		Spy:      r.SpyName(),
		Location: r.RoundLocation(),
		SpyWon:   outcome.SpyWon,
		Votes:    r.Votes,
	}
	result.ScoreDeltas = ApplyScores(r.Players, r.Roles, outcome.SpyWon)
	r.scoredRound = r.CurrentRound

	for _, p := range r.Players {
		p.Ready = false
	}
	r.Status = PhaseLobby
	r.Timer = r.Settings.RoundDuration
	r.TimerRunning = false
	r.Roles = nil
	r.Votes = nil
	r.Messages = nil
	r.SpyHintUsed = false
	r.LastVoteCallTime = time.Time{}

	return result, nil
}
