package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimStatus_CanTransitionTo(t *testing.T) {
	all := []ClaimStatus{ClaimStatusOpen, ClaimStatusAccepted, ClaimStatusResolving, ClaimStatusResolved, ClaimStatusRejected}
	allowed := map[[2]ClaimStatus]bool{
		{ClaimStatusOpen, ClaimStatusAccepted}:      true,
		{ClaimStatusOpen, ClaimStatusRejected}:      true,
		{ClaimStatusAccepted, ClaimStatusResolving}: true,
		{ClaimStatusAccepted, ClaimStatusResolved}:  true,
		{ClaimStatusResolving, ClaimStatusResolved}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ClaimStatus{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestClaimStatus_Terminal(t *testing.T) {
	assert.True(t, ClaimStatusResolved.IsTerminal())
	assert.True(t, ClaimStatusRejected.IsTerminal())
	assert.False(t, ClaimStatusOpen.IsTerminal())
	assert.False(t, ClaimStatus("unknown").IsTerminal())
}

func TestClaimStatus_ChatWritable(t *testing.T) {
	assert.True(t, ClaimStatusAccepted.ChatWritable())
	for _, s := range []ClaimStatus{ClaimStatusOpen, ClaimStatusResolving, ClaimStatusResolved, ClaimStatusRejected} {
		assert.False(t, s.ChatWritable(), string(s))
	}
}

func TestNewClaimStatus_Invalid(t *testing.T) {
	_, err := NewClaimStatus("pending")
	assert.Error(t, err)
}

func TestNewItemType(t *testing.T) {
	typ, err := NewItemType("found")
	assert.NoError(t, err)
	assert.Equal(t, ItemTypeFound, typ)

	_, err = NewItemType("stolen")
	assert.Error(t, err)
}

func TestNewRole(t *testing.T) {
	_, err := NewRole("superuser")
	assert.Error(t, err)

	role, err := NewRole("partner")
	assert.NoError(t, err)
	assert.Equal(t, RolePartner, role)
}
