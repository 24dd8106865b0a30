package repository

import "context"

// Set bundles every persistence port the engine mutates. A Set handed to a
// UnitOfWork callback is transaction-bound: either every write in the callback
// lands or none do.
type Set struct {
	Campaigns    CampaignRepository
	Rounds       RoundRepository
	Certificates CertificateRepository
	DAO          DAOStateRepository
	Proposals    ProposalRepository
	Escrows      EscrowRepository
}

// UnitOfWork gives mutating operations all-or-nothing semantics. A failed
// engine call must leave no observable effect.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(tx Set) error) error
}
