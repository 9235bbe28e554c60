package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposalTransitions(t *testing.T) {
	assert.True(t, ProposalPending.CanTransitionTo(ProposalAccepted))
	assert.True(t, ProposalPending.CanTransitionTo(ProposalRejected))

	for _, terminal := range []ProposalStatus{ProposalAccepted, ProposalRejected} {
		for _, next := range []ProposalStatus{ProposalPending, ProposalAccepted, ProposalRejected} {
			assert.False(t, terminal.CanTransitionTo(next),
				"%s -> %s must be denied", terminal, next)
		}
	}

	assert.False(t, ProposalPending.CanTransitionTo(ProposalPending))
	assert.False(t, ProposalStatus("bogus").CanTransitionTo(ProposalAccepted))
}

func TestInvitationTransitions(t *testing.T) {
	assert.True(t, InvitationPending.CanTransitionTo(InvitationAccepted))
	assert.True(t, InvitationPending.CanTransitionTo(InvitationRejected))
	assert.True(t, InvitationPending.CanTransitionTo(InvitationCancelled))

	terminals := []InvitationStatus{InvitationAccepted, InvitationRejected, InvitationCancelled}
	for _, terminal := range terminals {
		for _, next := range append(terminals, InvitationPending) {
			assert.False(t, terminal.CanTransitionTo(next),
				"%s -> %s must be denied", terminal, next)
		}
	}
}

func TestValidDecisions(t *testing.T) {
	assert.True(t, ValidProposalDecision(ProposalAccepted))
	assert.True(t, ValidProposalDecision(ProposalRejected))
	assert.False(t, ValidProposalDecision(ProposalPending))
	assert.False(t, ValidProposalDecision(ProposalStatus("cancelled")))

	assert.True(t, ValidInvitationResponse(InvitationAccepted))
	assert.True(t, ValidInvitationResponse(InvitationRejected))
	assert.False(t, ValidInvitationResponse(InvitationPending))
	assert.False(t, ValidInvitationResponse(InvitationCancelled))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleClient))
	assert.True(t, ValidRole(RoleFreelancer))
	assert.False(t, ValidRole(Role("admin")))
	assert.False(t, ValidRole(Role("")))
}
