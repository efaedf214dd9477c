// Package gov
package gov

import (
	"context"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftchain/governance-backend/types"
)

const testProposer = "0xaa1e3e2f04c7e2a8dfbcbbdd7b0f9a11f6e6779b"

func seedUser(t *testing.T, fakeDB *memDB, address string) *types.User {
	t.Helper()
	user := &types.User{Address: address, Name: faker.Name()}
	require.NoError(t, fakeDB.UpsertUser(context.Background(), user))
	return user
}

func createRequest(category types.ProposalCategory) *CreateProposalRequest {
	return &CreateProposalRequest{
		Proposer:    testProposer,
		ChainID:     1,
		Title:       faker.Sentence(),
		Description: faker.Paragraph(),
		Category:    category,
		Targets:     []string{"0x00000000000000000000000000000000000000a1"},
		Values:      []string{"0"},
		Calldatas:   []string{"0xdeadbeef"},
	}
}

func TestCreateProposal(t *testing.T) {
	svc, fakeDB, _ := newTestService(t)
	seedUser(t, fakeDB, testProposer)

	proposal, err := svc.CreateProposal(context.Background(), createRequest(types.CategoryStandard))
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, proposal.Status)
	assert.Equal(t, "0", proposal.ForVotes)
	assert.NotEmpty(t, proposal.MetadataRef)
	assert.Equal(t, 1, fakeDB.countEvents(proposal.ID, types.EventProposalCreated))
}

func TestCreateProposalSponsorshipFirst(t *testing.T) {
	svc, fakeDB, _ := newTestService(t)
	seedUser(t, fakeDB, testProposer)

	for _, category := range []types.ProposalCategory{
		types.CategoryProtocolUpgrade,
		types.CategoryTreasuryAllocation,
		types.CategoryEmergency,
	} {
		proposal, err := svc.CreateProposal(context.Background(), createRequest(category))
		require.NoError(t, err)
		assert.Equal(t, types.StatusPendingSponsorship, proposal.Status, string(category))
	}
}

func TestCreateProposalValidation(t *testing.T) {
	svc, fakeDB, _ := newTestService(t)
	seedUser(t, fakeDB, testProposer)

	req := createRequest(types.CategoryStandard)
	req.Values = []string{"0", "1"}
	_, err := svc.CreateProposal(context.Background(), req)
	var precondition *types.PreconditionError
	require.ErrorAs(t, err, &precondition)

	req = createRequest("NOT_A_CATEGORY")
	_, err = svc.CreateProposal(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrUnsupportedCategory)

	req = createRequest(types.CategoryStandard)
	req.Proposer = "0x0000000000000000000000000000000000000000"
	_, err = svc.CreateProposal(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrUserNotFound)
}

func TestPublishProposal(t *testing.T) {
	svc, fakeDB, _ := newTestService(t)
	seedUser(t, fakeDB, testProposer)

	proposal, err := svc.CreateProposal(context.Background(), createRequest(types.CategoryStandard))
	require.NoError(t, err)

	published, err := svc.PublishProposal(context.Background(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPendingSponsorship, published.Status)

	_, err = svc.PublishProposal(context.Background(), proposal.ID)
	var invalidState *types.InvalidStateError
	assert.ErrorAs(t, err, &invalidState)
}

func TestListProposalsFilter(t *testing.T) {
	svc, fakeDB, _ := newTestService(t)
	seedUser(t, fakeDB, testProposer)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateProposal(context.Background(), createRequest(types.CategoryStandard))
		require.NoError(t, err)
	}
	_, err := svc.CreateProposal(context.Background(), createRequest(types.CategoryTreasuryAllocation))
	require.NoError(t, err)

	drafts, total, err := svc.ListProposals(context.Background(), &types.ProposalsFilter{Status: types.StatusDraft})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, drafts, 3)

	treasury, total, err := svc.ListProposals(context.Background(), &types.ProposalsFilter{Category: types.CategoryTreasuryAllocation})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, treasury, 1)
	assert.Equal(t, types.StatusPendingSponsorship, treasury[0].Status)
}

func TestGetProposalDegradesWithoutChain(t *testing.T) {
	svc, fakeDB, chainStub := newTestService(t)
	seedUser(t, fakeDB, testProposer)

	proposal, err := svc.CreateProposal(context.Background(), createRequest(types.CategoryStandard))
	require.NoError(t, err)

	chainStub.snapshot = nil
	detail, err := svc.GetProposal(context.Background(), proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, proposal.ID, detail.ID)
	assert.Nil(t, detail.OnChain)
}
