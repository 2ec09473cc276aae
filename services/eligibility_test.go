package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateEligibility(t *testing.T) {
	tests := []struct {
		name      string
		in        EligibilityInput
		want      EligibilityReason
		shortfall int64
	}{
		{
			name: "anonymous reported first",
			in:   EligibilityInput{Balance: 0, EntryFee: 100},
			want: ReasonUnauthenticated,
		},
		{
			name:      "balance checked before accounts",
			in:        EligibilityInput{Authenticated: true, Balance: 30, EntryFee: 100},
			want:      ReasonInsufficientBalance,
			shortfall: 70,
		},
		{
			name: "exact balance is enough",
			in:   EligibilityInput{Authenticated: true, Balance: 100, EntryFee: 100},
			want: ReasonNoGameAccount,
		},
		{
			name: "account must be selected",
			in:   EligibilityInput{Authenticated: true, Balance: 100, EntryFee: 10, GameAccountIDs: []string{"a"}},
			want: ReasonGameAccountRequired,
		},
		{
			name: "selected account must be owned",
			in:   EligibilityInput{Authenticated: true, Balance: 100, GameAccountIDs: []string{"a"}, SelectedAccountID: "b"},
			want: ReasonGameAccountRequired,
		},
		{
			name: "eligible",
			in:   EligibilityInput{Authenticated: true, Balance: 100, EntryFee: 10, GameAccountIDs: []string{"a", "b"}, SelectedAccountID: "b"},
			want: ReasonEligible,
		},
		{
			name: "free entry with no coins",
			in:   EligibilityInput{Authenticated: true, GameAccountIDs: []string{"a"}, SelectedAccountID: "a"},
			want: ReasonEligible,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateEligibility(tt.in)
			assert.Equal(t, tt.want, got.Reason)
			assert.Equal(t, tt.shortfall, got.Shortfall)
			assert.Equal(t, tt.want == ReasonEligible, got.Eligible())
		})
	}
}

func TestEligibilityErr(t *testing.T) {
	assert.NoError(t, Eligibility{Reason: ReasonEligible}.Err())
	assert.ErrorIs(t, Eligibility{Reason: ReasonInsufficientBalance}.Err(), ErrInsufficientBalance)
	assert.ErrorIs(t, Eligibility{Reason: ReasonRegistrationClosed}.Err(), ErrRegistrationClosed)
	assert.ErrorIs(t, Eligibility{Reason: ReasonAlreadyJoined}.Err(), ErrAlreadyJoined)
	assert.ErrorIs(t, Eligibility{Reason: "bogus"}.Err(), ErrInvalidInput)
}
