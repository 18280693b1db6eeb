package domain

import (
	"errors"
	"testing"
)

func TestPolicySettle(t *testing.T) {
	tests := []struct {
		name    string
		policy  TerminationPolicy
		release int64
		want    []Payout
	}{
		{"refund all", PolicyRefundTenant, 200, []Payout{{tenant, wei(200)}}},
		{"refund part", PolicyRefundTenant, 150, []Payout{{tenant, wei(150)}, {owner, wei(50)}}},
		{"refund none", PolicyRefundTenant, 0, []Payout{{owner, wei(200)}}},
		{"pay owner part", PolicyPayOwner, 80, []Payout{{owner, wei(80)}, {tenant, wei(120)}}},
		{"pay owner all", PolicyPayOwner, 200, []Payout{{owner, wei(200)}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.policy.Settle(owner, tenant, wei(tc.release), wei(200))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d payouts, got %+v", len(tc.want), got)
			}
			for i := range got {
				if got[i].Recipient != tc.want[i].Recipient || got[i].Amount.Cmp(tc.want[i].Amount) != 0 {
					t.Fatalf("payout %d: expected %+v, got %+v", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestPolicySettleRejects(t *testing.T) {
	if _, err := TerminationPolicy(2).Settle(owner, tenant, wei(1), wei(200)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown policy, got %v", err)
	}
	if _, err := PolicyPayOwner.Settle(owner, tenant, wei(-1), wei(200)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative release, got %v", err)
	}
	if _, err := PolicyRefundTenant.Settle(owner, tenant, wei(201), wei(200)); !errors.Is(err, ErrFunds) {
		t.Fatalf("expected funds error for release above balance, got %v", err)
	}
	if got := TerminationPolicy(9).String(); got != "TerminationPolicy(9)" {
		t.Fatalf("unexpected name %q", got)
	}
}
