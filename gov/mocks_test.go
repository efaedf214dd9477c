// Package gov
package gov

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liftchain/governance-backend/docstore"
	"github.com/liftchain/governance-backend/types"
)

// memDB is an in-memory stand-in for the mongo client with the same CAS and
// unique-key semantics.
type memDB struct {
	mu  sync.Mutex
	seq int

	proposals    map[string]*types.Proposal
	sponsorships map[string]*types.Sponsorship
	ballots      map[string]*types.Ballot
	forwards     map[string]*types.LiftForward
	milestones   map[string]*types.Milestone
	challenges   map[string]*types.Challenge
	events       []*types.Event
	users        map[string]*types.User
}

func newMemDB() *memDB {
	return &memDB{
		proposals:    make(map[string]*types.Proposal),
		sponsorships: make(map[string]*types.Sponsorship),
		ballots:      make(map[string]*types.Ballot),
		forwards:     make(map[string]*types.LiftForward),
		milestones:   make(map[string]*types.Milestone),
		challenges:   make(map[string]*types.Challenge),
		users:        make(map[string]*types.User),
	}
}

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memDB) InsertProposal(_ context.Context, proposal *types.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if proposal.ID == "" {
		proposal.ID = m.nextID("proposal")
	}
	cp := *proposal
	m.proposals[proposal.ID] = &cp
	return nil
}

func (m *memDB) ProposalByID(_ context.Context, id string) (*types.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, types.ErrProposalNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memDB) Proposals(_ context.Context, filter *types.ProposalsFilter) ([]*types.Proposal, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Proposal
	for _, p := range m.proposals {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Proposer != "" && p.Proposer != filter.Proposer {
			continue
		}
		if filter.ChainID != 0 && p.ChainID != filter.ChainID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (m *memDB) TransitionProposal(_ context.Context, id string, from, to types.ProposalStatus, patch *types.ProposalPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if patch != nil {
		if patch.SnapshotBlock != nil {
			p.SnapshotBlock = *patch.SnapshotBlock
		}
		if patch.StartBlock != nil {
			p.StartBlock = *patch.StartBlock
		}
		if patch.EndBlock != nil {
			p.EndBlock = *patch.EndBlock
		}
		if patch.TimelockEta != nil {
			p.TimelockEta = *patch.TimelockEta
		}
		if patch.TimelockDelay != nil {
			p.TimelockDelay = *patch.TimelockDelay
		}
		if patch.ExecutedTxRef != nil {
			p.ExecutedTxRef = *patch.ExecutedTxRef
		}
		if patch.CancelReason != nil {
			p.CancelReason = *patch.CancelReason
		}
		if patch.DepositRefunded != nil {
			p.DepositRefunded = *patch.DepositRefunded
		}
	}
	return true, nil
}

func (m *memDB) MarkDepositPaid(_ context.Context, id, amount, txRef string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.DepositPaid {
		return false, nil
	}
	p.DepositPaid = true
	p.DepositAmount = amount
	p.DepositTxRef = txRef
	return true, nil
}

func (m *memDB) MarkDepositRefunded(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || !p.DepositPaid || p.DepositRefunded {
		return false, nil
	}
	p.DepositRefunded = true
	return true, nil
}

func (m *memDB) SetVoteTotals(_ context.Context, id, forVotes, againstVotes, abstainVotes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return types.ErrProposalNotFound
	}
	p.ForVotes = forVotes
	p.AgainstVotes = againstVotes
	p.AbstainVotes = abstainVotes
	return nil
}

func (m *memDB) QueuedProposalsByEta(_ context.Context) ([]*types.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Proposal
	for _, p := range m.proposals {
		if p.Status == types.StatusQueued {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimelockEta < out[j].TimelockEta })
	return out, nil
}

func (m *memDB) InsertSponsorship(_ context.Context, sp *types.Sponsorship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sp.ProposalID + "|" + sp.Sponsor
	if _, ok := m.sponsorships[key]; ok {
		return types.ErrAlreadySponsored
	}
	sp.ID = m.nextID("sponsorship")
	cp := *sp
	m.sponsorships[key] = &cp
	return nil
}

func (m *memDB) CountSponsorships(_ context.Context, proposalID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, sp := range m.sponsorships {
		if sp.ProposalID == proposalID {
			count++
		}
	}
	return count, nil
}

func (m *memDB) Sponsorships(_ context.Context, proposalID string) ([]*types.Sponsorship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Sponsorship
	for _, sp := range m.sponsorships {
		if sp.ProposalID == proposalID {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDB) UpsertBallot(_ context.Context, ballot *types.Ballot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ballot.ProposalID + "|" + ballot.Voter
	_, existed := m.ballots[key]
	if ballot.ID == "" {
		ballot.ID = m.nextID("ballot")
	}
	cp := *ballot
	m.ballots[key] = &cp
	return existed, nil
}

func (m *memDB) BallotsByProposal(_ context.Context, proposalID string) ([]*types.Ballot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Ballot
	for _, b := range m.ballots {
		if b.ProposalID == proposalID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDB) InsertForward(_ context.Context, fwd *types.LiftForward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fwd.ID = m.nextID("forward")
	cp := *fwd
	m.forwards[fwd.ID] = &cp
	return nil
}

func (m *memDB) ForwardByID(_ context.Context, id string) (*types.LiftForward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forwards[id]
	if !ok {
		return nil, types.ErrForwardNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memDB) ForwardsByProposal(_ context.Context, proposalID string) ([]*types.LiftForward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.LiftForward
	for _, f := range m.forwards {
		if f.ProposalID == proposalID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDB) TransitionForward(_ context.Context, id string, from, to types.ForwardStatus, completedAt int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forwards[id]
	if !ok || f.Status != from {
		return false, nil
	}
	f.Status = to
	f.CompletedAt = completedAt
	return true, nil
}

func (m *memDB) InsertMilestones(_ context.Context, milestones []*types.Milestone) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ms := range milestones {
		ms.ID = m.nextID("milestone")
		cp := *ms
		m.milestones[ms.ID] = &cp
	}
	return nil
}

func (m *memDB) MilestoneByID(_ context.Context, id string) (*types.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok {
		return nil, types.ErrMilestoneNotFound
	}
	cp := *ms
	return &cp, nil
}

func (m *memDB) MilestonesByForward(_ context.Context, forwardID string) ([]*types.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Milestone
	for _, ms := range m.milestones {
		if ms.ForwardID == forwardID {
			cp := *ms
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (m *memDB) MilestonesByStatus(_ context.Context, status types.MilestoneStatus) ([]*types.Milestone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Milestone
	for _, ms := range m.milestones {
		if ms.Status == status {
			cp := *ms
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDB) TransitionMilestone(_ context.Context, id string, from, to types.MilestoneStatus, patch *types.MilestonePatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.milestones[id]
	if !ok || ms.Status != from {
		return false, nil
	}
	ms.Status = to
	if patch != nil {
		if patch.EvidenceBundleRef != nil {
			ms.EvidenceBundleRef = *patch.EvidenceBundleRef
		}
		if patch.SubmittedBy != nil {
			ms.SubmittedBy = *patch.SubmittedBy
		}
		if patch.SubmittedAt != nil {
			ms.SubmittedAt = *patch.SubmittedAt
		}
		if patch.ChallengeWindowEnd != nil {
			ms.ChallengeWindowEnd = *patch.ChallengeWindowEnd
		}
		if patch.Verifier != nil {
			ms.Verifier = *patch.Verifier
		}
		if patch.VerifierNotes != nil {
			ms.VerifierNotes = *patch.VerifierNotes
		}
		if patch.AcceptedAt != nil {
			ms.AcceptedAt = *patch.AcceptedAt
		}
	}
	return true, nil
}

func (m *memDB) InsertChallenge(_ context.Context, ch *types.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch.ID = m.nextID("challenge")
	cp := *ch
	m.challenges[ch.ID] = &cp
	return nil
}

func (m *memDB) ChallengeByID(_ context.Context, id string) (*types.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return nil, types.ErrChallengeNotFound
	}
	cp := *ch
	return &cp, nil
}

func (m *memDB) ChallengesByMilestone(_ context.Context, milestoneID string) ([]*types.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Challenge
	for _, ch := range m.challenges {
		if ch.MilestoneID == milestoneID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDB) CountPendingChallenges(_ context.Context, milestoneID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, ch := range m.challenges {
		if ch.MilestoneID == milestoneID && ch.Status == types.ChallengePending {
			count++
		}
	}
	return count, nil
}

func (m *memDB) ResolveChallenge(_ context.Context, id, resolver string, to types.ChallengeStatus, notes string, resolvedAt int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok || ch.Status != types.ChallengePending {
		return false, nil
	}
	ch.Status = to
	ch.Resolver = resolver
	ch.Notes = notes
	ch.ResolvedAt = resolvedAt
	return true, nil
}

func (m *memDB) InsertEvent(_ context.Context, event *types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = m.nextID("event")
	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (m *memDB) EventsByEntity(_ context.Context, entityType, entityID string) ([]*types.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.Event
	for _, e := range m.events {
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDB) countEvents(entityID, eventType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.events {
		if e.EntityID == entityID && e.Type == eventType {
			count++
		}
	}
	return count
}

func (m *memDB) FindUserByAddress(_ context.Context, address string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(address)]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memDB) UpsertUser(_ context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = m.nextID("user")
	}
	cp := *user
	m.users[strings.ToLower(user.Address)] = &cp
	return nil
}

// stubChain satisfies chain.ClientInterface with settable responses.
type stubChain struct {
	block     uint64
	supply    *big.Int
	supplyErr error
	submitTx  string
	submitErr error
	snapshot  *types.OnChainSnapshot
}

func (c *stubChain) LatestBlockNumber(_ context.Context, _ uint64) (uint64, error) {
	return c.block, nil
}

func (c *stubChain) ProposalOnChainState(_ context.Context, _ uint64, _ string) (*types.OnChainSnapshot, error) {
	if c.snapshot == nil {
		return nil, types.ErrUnsupportedChain
	}
	return c.snapshot, nil
}

func (c *stubChain) TotalSupply(_ context.Context, _ uint64) (*big.Int, error) {
	if c.supplyErr != nil {
		return nil, c.supplyErr
	}
	return c.supply, nil
}

func (c *stubChain) SubmitBatch(_ context.Context, _ uint64, _, _, _ []string) (string, error) {
	if c.submitErr != nil {
		return "", c.submitErr
	}
	if c.submitTx == "" {
		return "0xstubtx", nil
	}
	return c.submitTx, nil
}

func (c *stubChain) GovernanceAddress(_ uint64) (string, error) {
	return "0x1f6e6779b0b1e3e2f04c7e2a8dfbcbbdd7b0f9a1", nil
}

// memStore keeps stored documents in memory.
type memStore struct {
	mu   sync.Mutex
	seq  int
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (s *memStore) Put(_ context.Context, data []byte, _ string, _ map[string]string) (*docstore.PutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("doc-%d", s.seq)
	s.docs[id] = data
	return &docstore.PutResult{ContentID: id, IntegrityHash: "stub"}, nil
}

func (s *memStore) Get(_ context.Context, contentID string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[contentID]
	if !ok {
		return nil, false, fmt.Errorf("document %s not found", contentID)
	}
	return data, true, nil
}

func newTestService(t *testing.T) (*Service, *memDB, *stubChain) {
	t.Helper()
	fakeDB := newMemDB()
	chainStub := &stubChain{block: 100, supply: big.NewInt(1000000)}
	svc, err := New(Config{
		DB:                 fakeDB,
		Chain:              chainStub,
		DocStore:           newMemStore(),
		DefaultTotalSupply: "1000000",
		Logger:             zap.NewNop(),
	})
	require.NoError(t, err)
	return svc, fakeDB, chainStub
}

func freezeTime(svc *Service, at time.Time) {
	svc.now = func() time.Time { return at }
}
