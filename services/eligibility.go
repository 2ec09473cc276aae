package services

type EligibilityReason string

const (
	ReasonEligible            EligibilityReason = "eligible"
	ReasonUnauthenticated     EligibilityReason = "unauthenticated"
	ReasonInsufficientBalance EligibilityReason = "insufficient_balance"
	ReasonNoGameAccount       EligibilityReason = "no_game_account"
	ReasonGameAccountRequired EligibilityReason = "game_account_required"
	ReasonRegistrationClosed  EligibilityReason = "registration_closed"
	ReasonTournamentFull      EligibilityReason = "tournament_full"
	ReasonAlreadyJoined       EligibilityReason = "already_joined"
)

// EligibilityInput is what the gate needs to know about a player and a tournament.
type EligibilityInput struct {
	Authenticated     bool
	Balance           int64
	EntryFee          int64
	GameAccountIDs    []string
	SelectedAccountID string
}

type Eligibility struct {
	Reason    EligibilityReason `json:"reason"`
	Shortfall int64             `json:"shortfall,omitempty"`
}

func (e Eligibility) Eligible() bool {
	return e.Reason == ReasonEligible
}

// Err maps a blocking reason to its sentinel error, nil when eligible.
func (e Eligibility) Err() error {
	switch e.Reason {
	case ReasonEligible:
		return nil
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonInsufficientBalance:
		return ErrInsufficientBalance
	case ReasonNoGameAccount:
		return ErrNoGameAccount
	case ReasonGameAccountRequired:
		return ErrGameAccountRequired
	case ReasonRegistrationClosed:
		return ErrRegistrationClosed
	case ReasonTournamentFull:
		return ErrTournamentFull
	case ReasonAlreadyJoined:
		return ErrAlreadyJoined
	default:
		return ErrInvalidInput
	}
}

// EvaluateEligibility applies the join checks in order and reports only the first failure.
func EvaluateEligibility(in EligibilityInput) Eligibility {
	if !in.Authenticated {
		return Eligibility{Reason: ReasonUnauthenticated}
	}
	if in.Balance < in.EntryFee {
		return Eligibility{Reason: ReasonInsufficientBalance, Shortfall: in.EntryFee - in.Balance}
	}
	if len(in.GameAccountIDs) == 0 {
		return Eligibility{Reason: ReasonNoGameAccount}
	}
	if in.SelectedAccountID == "" || !contains(in.GameAccountIDs, in.SelectedAccountID) {
		return Eligibility{Reason: ReasonGameAccountRequired}
	}
	return Eligibility{Reason: ReasonEligible}
}

func contains(items []string, v string) bool {
	for _, it := range items {
		if it == v {
			return true
		}
	}
	return false
}
