// Package grading settles bets against final scores and computes
// closing-line value.
package grading

import (
	"fmt"

	"github.com/yourusername/line-edge/internal/models"
)

// Grader computes win/loss/push outcomes for bet records. Stateless; safe
// to invoke concurrently across different bets.
type Grader struct{}

// NewGrader creates a grading engine
func NewGrader() *Grader {
	return &Grader{}
}

// Grade returns the outcome of a bet against a final game.
//
// Returns models.ErrGameNotFinal while the game is still open (retry later,
// not a permanent failure) and models.ErrAlreadyGraded alongside the stored
// outcome when the bet was graded before: the second call is a no-op, not
// an error condition.
func (g *Grader) Grade(bet *models.BetRecord, game *models.Game) (models.Outcome, error) {
	if bet == nil {
		return "", fmt.Errorf("bet record is required")
	}
	if game == nil || !game.IsFinal() {
		return "", models.ErrGameNotFinal
	}
	if bet.IsGraded() {
		return *bet.Outcome, models.ErrAlreadyGraded
	}

	switch bet.Market {
	case models.MarketTotal:
		return gradeTotal(bet, game)
	default:
		return gradeSpread(bet, game)
	}
}

// gradeSpread settles a spread bet. Lines are stored in the bettor's side
// perspective, so the adjusted margin is sideMargin + line for both sides:
// bet home -3 with margin +3 lands exactly on zero, a push.
func gradeSpread(bet *models.BetRecord, game *models.Game) (models.Outcome, error) {
	sideMargin := float64(game.Margin())
	switch bet.Side {
	case models.SideAway:
		sideMargin = -sideMargin
	case models.SideHome:
	default:
		return "", fmt.Errorf("side %q is not valid for a spread bet", bet.Side)
	}

	return outcomeFromDiff(sideMargin + bet.Line), nil
}

// gradeTotal settles a total bet by comparing the combined score to the line.
func gradeTotal(bet *models.BetRecord, game *models.Game) (models.Outcome, error) {
	combined := float64(game.CombinedScore())
	switch bet.Side {
	case models.SideOver:
		return outcomeFromDiff(combined - bet.Line), nil
	case models.SideUnder:
		return outcomeFromDiff(bet.Line - combined), nil
	default:
		return "", fmt.Errorf("side %q is not valid for a total bet", bet.Side)
	}
}

func outcomeFromDiff(diff float64) models.Outcome {
	switch {
	case diff > 0:
		return models.OutcomeWin
	case diff < 0:
		return models.OutcomeLoss
	default:
		return models.OutcomePush
	}
}
