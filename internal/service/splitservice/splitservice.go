package splitservice

import (
	"math"

	"github.com/santiagotarnoski/qrsplit/internal/domain"
	"go.uber.org/zap"
)

const (
	// MethodEqual divides the session total evenly between participants.
	MethodEqual string = "equal"
	// MethodProportional divides each item between its assignees.
	MethodProportional string = "proportional"
)

type ItemShare struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Share  float64 `json:"share"`
}

type Allocation struct {
	ParticipantID string      `json:"participantId"`
	UserID        string      `json:"userId"`
	Name          string      `json:"name"`
	Amount        float64     `json:"amount"`
	Percentage    float64     `json:"percentage"`
	Items         []ItemShare `json:"items"`
	Method        string      `json:"method"`
}

type Summary struct {
	ParticipantCount int     `json:"participantCount"`
	AverageAmount    float64 `json:"averageAmount"`
	HighestAmount    float64 `json:"highestAmount"`
	LowestAmount     float64 `json:"lowestAmount"`
}

// Result is always renderable: degenerate input produces zero-filled
// fields, never an error.
type Result struct {
	Method          string       `json:"method"`
	TotalAmount     float64      `json:"totalAmount"`
	CalculatedTotal float64      `json:"calculatedTotal"`
	Difference      float64      `json:"difference"`
	Participants    []Allocation `json:"participants"`
	Summary         Summary      `json:"summary"`
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compute allocates total across participants under the selected method.
// Unknown methods fall back to proportional. Amounts are accumulated at
// full precision and rounded only at emission.
func (e *Engine) Compute(total float64, items []domain.Item, participants []domain.Participant, method string) *Result {
	if method != MethodEqual {
		method = MethodProportional
	}

	if len(participants) == 0 {
		return &Result{
			Method:       method,
			TotalAmount:  total,
			Participants: []Allocation{},
			Summary:      Summary{ParticipantCount: 0},
		}
	}

	var splits []Allocation
	switch method {
	case MethodEqual:
		splits = equalSplit(total, participants)
	default:
		splits = proportionalSplit(items, participants)
	}

	var calculatedTotal float64
	highest := splits[0].Amount
	lowest := splits[0].Amount
	for _, s := range splits {
		calculatedTotal += s.Amount
		highest = math.Max(highest, s.Amount)
		lowest = math.Min(lowest, s.Amount)
	}

	result := &Result{
		Method:          method,
		TotalAmount:     total,
		CalculatedTotal: round2(calculatedTotal),
		Difference:      round2(total - calculatedTotal),
		Participants:    splits,
		Summary: Summary{
			ParticipantCount: len(participants),
			AverageAmount:    round2(calculatedTotal / float64(len(splits))),
			HighestAmount:    highest,
			LowestAmount:     lowest,
		},
	}

	zap.L().Debug("split computed",
		zap.String("method", method),
		zap.Int("participants", len(participants)),
		zap.Float64("calculatedTotal", result.CalculatedTotal),
		zap.Float64("difference", result.Difference),
	)
	return result
}

// ComputeForProjection runs Compute over a full session snapshot.
func (e *Engine) ComputeForProjection(projection *domain.SessionProjection, method string) *Result {
	return e.Compute(projection.Session.TotalAmount, projection.Items, projection.Participants, method)
}

func equalSplit(total float64, participants []domain.Participant) []Allocation {
	count := len(participants)
	amountPerPerson := total / float64(count)

	splits := make([]Allocation, 0, count)
	for _, p := range participants {
		splits = append(splits, Allocation{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Name:          p.DisplayName(),
			Amount:        round2(amountPerPerson),
			Percentage:    round2(100 / float64(count)),
			Items:         []ItemShare{},
			Method:        MethodEqual,
		})
	}
	return splits
}

func proportionalSplit(items []domain.Item, participants []domain.Participant) []Allocation {
	known := make(map[string]struct{}, len(participants))
	totals := make(map[string]float64, len(participants))
	for _, p := range participants {
		known[p.ID] = struct{}{}
		totals[p.ID] = 0
	}

	var grandTotal float64
	for _, item := range items {
		itemTotal := item.Total()
		grandTotal += itemTotal

		if len(item.Assignees) == 0 {
			// Unassigned items belong to everyone.
			perPerson := itemTotal / float64(len(participants))
			for _, p := range participants {
				totals[p.ID] += perPerson
			}
			continue
		}

		perAssignee := itemTotal / float64(len(item.Assignees))
		for _, assigneeID := range item.Assignees {
			// Assignees no longer in the participant set are skipped,
			// their share is simply not allocated.
			if _, ok := known[assigneeID]; ok {
				totals[assigneeID] += perAssignee
			}
		}
	}

	splits := make([]Allocation, 0, len(participants))
	for _, p := range participants {
		amount := totals[p.ID]
		var percentage float64
		if grandTotal > 0 {
			percentage = amount / grandTotal * 100
		}

		splits = append(splits, Allocation{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Name:          p.DisplayName(),
			Amount:        round2(amount),
			Percentage:    round2(percentage),
			Items:         participantItems(items, participants, p.ID),
			Method:        MethodProportional,
		})
	}
	return splits
}

func participantItems(items []domain.Item, participants []domain.Participant, participantID string) []ItemShare {
	shares := make([]ItemShare, 0)
	for _, item := range items {
		denom := len(item.Assignees)
		if denom == 0 {
			denom = len(participants)
			if denom == 0 {
				denom = 1
			}
		} else if !contains(item.Assignees, participantID) {
			continue
		}

		shares = append(shares, ItemShare{
			ID:     item.ID,
			Name:   item.Name,
			Amount: item.Amount,
			Share:  round2(item.Amount / float64(denom)),
		})
	}
	return shares
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
