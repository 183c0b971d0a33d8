package gesture

import "github.com/ayusman/mudra/internal/detector"

// Rock-paper-scissors moves.
const (
	Rock     = "ROCK"
	Paper    = "PAPER"
	Scissors = "SCISSORS"
	NoMove   = "UNKNOWN"
)

// RockPaperScissors maps a curl vector to a game move.
func RockPaperScissors(curls [detector.NumFingers]float64) string {
	var sum float64
	for _, c := range curls {
		sum += c
	}

	switch {
	case sum > 4.5:
		return Rock
	case sum < 1.5:
		return Paper
	case curls[detector.Index] < 0.5 && curls[detector.Middle] < 0.5 &&
		curls[detector.Ring] > 0.8 && curls[detector.Pinky] > 0.8:
		return Scissors
	default:
		return NoMove
	}
}
