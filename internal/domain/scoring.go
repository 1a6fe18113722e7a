package domain

const (
	SpyWinPoints      = 2
	CivilianWinPoints = 1
)

// ApplyScores adds one round's points to the players and returns the deltas.
// Every seated player who is not the spy counts as a civilian, including
// players who were offline when roles were dealt.
// It has no memory of earlier calls; Room.EndRound is the guarded entry point.
func ApplyScores(players map[string]*Player, roles map[string]RoleAssignment, spyWon bool) map[string]int {
	deltas := make(map[string]int, len(players))
	for name, player := range players {
		isSpy := roles[name].IsSpy
		switch {
		case spyWon && isSpy:
			deltas[name] = SpyWinPoints
		case !spyWon && !isSpy:
			deltas[name] = CivilianWinPoints
		default:
			continue
		}
		player.Score += deltas[name]
	}
	return deltas
}
