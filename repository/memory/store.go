// Package memory provides a mutex-guarded in-memory implementation of every
// repository port. It backs the engine test suites and local development runs;
// Within snapshots the whole state so a failed unit of work rolls back cleanly.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/crowdvault/backend/domain"
	"github.com/crowdvault/backend/repository"
)

type state struct {
	campaigns map[string]domain.Campaign
	rounds    map[string]map[int]domain.Round
	certs     map[string]map[int64]domain.Certificate
	dao       map[string]domain.DAOState
	proposals map[string]domain.Proposal
	votes     map[string]map[string]domain.Vote
	escrows   map[string]map[int]domain.Escrow
}

func newState() *state {
	return &state{
		campaigns: make(map[string]domain.Campaign),
		rounds:    make(map[string]map[int]domain.Round),
		certs:     make(map[string]map[int64]domain.Certificate),
		dao:       make(map[string]domain.DAOState),
		proposals: make(map[string]domain.Proposal),
		votes:     make(map[string]map[string]domain.Vote),
		escrows:   make(map[string]map[int]domain.Escrow),
	}
}

func (s *state) clone() *state {
	c := newState()
	maps.Copy(c.campaigns, s.campaigns)
	for k, v := range s.rounds {
		c.rounds[k] = maps.Clone(v)
	}
	for k, v := range s.certs {
		c.certs[k] = maps.Clone(v)
	}
	maps.Copy(c.dao, s.dao)
	maps.Copy(c.proposals, s.proposals)
	for k, v := range s.votes {
		c.votes[k] = maps.Clone(v)
	}
	for k, v := range s.escrows {
		c.escrows[k] = maps.Clone(v)
	}
	return c
}

// Store holds all campaign state in process memory.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Set returns the repository ports backed by this store.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Campaigns:    &campaignRepo{s},
		Rounds:       &roundRepo{s},
		Certificates: &certificateRepo{s},
		DAO:          &daoRepo{s},
		Proposals:    &proposalRepo{s},
		Escrows:      &escrowRepo{s},
	}
}

// Within serializes units of work and restores the pre-transaction snapshot
// when the callback fails.
func (s *Store) Within(ctx context.Context, fn func(tx repository.Set) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(s.Set()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

var _ repository.UnitOfWork = (*Store)(nil)

type campaignRepo struct{ s *Store }

func (r *campaignRepo) Get(_ context.Context, id string) (*domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	campaign, ok := r.s.data.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &campaign, nil
}

func (r *campaignRepo) Create(_ context.Context, campaign *domain.Campaign) error {
	if campaign == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.campaigns[campaign.ID] = *campaign
	return nil
}

func (r *campaignRepo) Update(_ context.Context, campaign *domain.Campaign) error {
	if campaign == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.campaigns[campaign.ID]; !ok {
		return domain.ErrCampaignNotFound
	}
	r.s.data.campaigns[campaign.ID] = *campaign
	return nil
}

func (r *campaignRepo) List(_ context.Context, limit, offset int) ([]domain.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	campaigns := make([]domain.Campaign, 0, len(r.s.data.campaigns))
	for _, campaign := range r.s.data.campaigns {
		campaigns = append(campaigns, campaign)
	}
	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return page(campaigns, limit, offset), nil
}

type roundRepo struct{ s *Store }

func (r *roundRepo) Get(_ context.Context, campaignID string, number int) (*domain.Round, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	round, ok := r.s.data.rounds[campaignID][number]
	if !ok {
		return nil, domain.ErrRoundNotFound
	}
	return &round, nil
}

func (r *roundRepo) Current(_ context.Context, campaignID string) (*domain.Round, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var current *domain.Round
	for number := range r.s.data.rounds[campaignID] {
		if current == nil || number > current.Number {
			round := r.s.data.rounds[campaignID][number]
			current = &round
		}
	}
	if current == nil {
		return nil, domain.ErrRoundNotFound
	}
	return current, nil
}

func (r *roundRepo) List(_ context.Context, campaignID string) ([]domain.Round, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rounds := make([]domain.Round, 0, len(r.s.data.rounds[campaignID]))
	for _, round := range r.s.data.rounds[campaignID] {
		rounds = append(rounds, round)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

func (r *roundRepo) Create(_ context.Context, round *domain.Round) error {
	if round == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.data.rounds[round.CampaignID] == nil {
		r.s.data.rounds[round.CampaignID] = make(map[int]domain.Round)
	}
	r.s.data.rounds[round.CampaignID][round.Number] = *round
	return nil
}

func (r *roundRepo) Update(_ context.Context, round *domain.Round) error {
	if round == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.rounds[round.CampaignID][round.Number]; !ok {
		return domain.ErrRoundNotFound
	}
	r.s.data.rounds[round.CampaignID][round.Number] = *round
	return nil
}

type certificateRepo struct{ s *Store }

func (r *certificateRepo) Get(_ context.Context, campaignID string, id int64) (*domain.Certificate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cert, ok := r.s.data.certs[campaignID][id]
	if !ok {
		return nil, domain.ErrCertificateNotFound
	}
	return &cert, nil
}

func (r *certificateRepo) List(_ context.Context, filter repository.CertificateFilter) ([]domain.Certificate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var certs []domain.Certificate
	for _, cert := range r.s.data.certs[filter.CampaignID] {
		if filter.OwnerID != "" && cert.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Round != 0 && cert.Round != filter.Round {
			continue
		}
		if !filter.IncludeBurned && cert.Burned {
			continue
		}
		certs = append(certs, cert)
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].ID < certs[j].ID })
	return page(certs, filter.Limit, filter.Offset), nil
}

func (r *certificateRepo) CreateBatch(_ context.Context, certs []domain.Certificate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cert := range certs {
		if r.s.data.certs[cert.CampaignID] == nil {
			r.s.data.certs[cert.CampaignID] = make(map[int64]domain.Certificate)
		}
		r.s.data.certs[cert.CampaignID][cert.ID] = cert
	}
	return nil
}

func (r *certificateRepo) Update(_ context.Context, cert *domain.Certificate) error {
	if cert == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.certs[cert.CampaignID][cert.ID]; !ok {
		return domain.ErrCertificateNotFound
	}
	r.s.data.certs[cert.CampaignID][cert.ID] = *cert
	return nil
}

func (r *certificateRepo) CountActive(_ context.Context, campaignID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, cert := range r.s.data.certs[campaignID] {
		if !cert.Burned {
			count++
		}
	}
	return count, nil
}

func (r *certificateRepo) CountActiveByOwner(_ context.Context, campaignID, ownerID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, cert := range r.s.data.certs[campaignID] {
		if !cert.Burned && cert.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

type daoRepo struct{ s *Store }

func (r *daoRepo) Get(_ context.Context, campaignID string) (*domain.DAOState, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	state, ok := r.s.data.dao[campaignID]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &state, nil
}

func (r *daoRepo) Create(_ context.Context, state *domain.DAOState) error {
	if state == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.dao[state.CampaignID] = *state
	return nil
}

func (r *daoRepo) Update(_ context.Context, state *domain.DAOState) error {
	if state == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.dao[state.CampaignID]; !ok {
		return domain.ErrCampaignNotFound
	}
	r.s.data.dao[state.CampaignID] = *state
	return nil
}

type proposalRepo struct{ s *Store }

func (r *proposalRepo) Get(_ context.Context, id string) (*domain.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	proposal, ok := r.s.data.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return &proposal, nil
}

func (r *proposalRepo) ListByCampaign(_ context.Context, campaignID string) ([]domain.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var proposals []domain.Proposal
	for _, proposal := range r.s.data.proposals {
		if proposal.CampaignID == campaignID {
			proposals = append(proposals, proposal)
		}
	}
	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].CreatedAt.After(proposals[j].CreatedAt)
	})
	return proposals, nil
}

func (r *proposalRepo) Create(_ context.Context, proposal *domain.Proposal) error {
	if proposal == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.proposals[proposal.ID] = *proposal
	return nil
}

func (r *proposalRepo) Update(_ context.Context, proposal *domain.Proposal) error {
	if proposal == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.proposals[proposal.ID]; !ok {
		return domain.ErrProposalNotFound
	}
	r.s.data.proposals[proposal.ID] = *proposal
	return nil
}

func (r *proposalRepo) GetVote(_ context.Context, proposalID, voterID string) (*domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	vote, ok := r.s.data.votes[proposalID][voterID]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return &vote, nil
}

func (r *proposalRepo) CreateVote(_ context.Context, vote *domain.Vote) error {
	if vote == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.data.votes[vote.ProposalID] == nil {
		r.s.data.votes[vote.ProposalID] = make(map[string]domain.Vote)
	}
	r.s.data.votes[vote.ProposalID][vote.VoterID] = *vote
	return nil
}

func (r *proposalRepo) ListVotes(_ context.Context, proposalID string) ([]domain.Vote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	votes := make([]domain.Vote, 0, len(r.s.data.votes[proposalID]))
	for _, vote := range r.s.data.votes[proposalID] {
		votes = append(votes, vote)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].CastAt.Before(votes[j].CastAt) })
	return votes, nil
}

type escrowRepo struct{ s *Store }

func (r *escrowRepo) Get(_ context.Context, campaignID string, round int) (*domain.Escrow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	escrow, ok := r.s.data.escrows[campaignID][round]
	if !ok {
		return nil, domain.ErrEscrowNotFound
	}
	return &escrow, nil
}

func (r *escrowRepo) ListByCampaign(_ context.Context, campaignID string) ([]domain.Escrow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	escrows := make([]domain.Escrow, 0, len(r.s.data.escrows[campaignID]))
	for _, escrow := range r.s.data.escrows[campaignID] {
		escrows = append(escrows, escrow)
	}
	sort.Slice(escrows, func(i, j int) bool { return escrows[i].Round < escrows[j].Round })
	return escrows, nil
}

func (r *escrowRepo) Create(_ context.Context, escrow *domain.Escrow) error {
	if escrow == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.data.escrows[escrow.CampaignID] == nil {
		r.s.data.escrows[escrow.CampaignID] = make(map[int]domain.Escrow)
	}
	r.s.data.escrows[escrow.CampaignID][escrow.Round] = *escrow
	return nil
}

func (r *escrowRepo) Update(_ context.Context, escrow *domain.Escrow) error {
	if escrow == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.escrows[escrow.CampaignID][escrow.Round]; !ok {
		return domain.ErrEscrowNotFound
	}
	r.s.data.escrows[escrow.CampaignID][escrow.Round] = *escrow
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
