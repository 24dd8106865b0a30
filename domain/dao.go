package domain

import "time"

// DAOPhase is the post-funding lifecycle state of a campaign.
type DAOPhase string

const (
	PhaseInactive       DAOPhase = "INACTIVE"
	PhaseWaitingForLive DAOPhase = "WAITING_FOR_LIVE"
	PhaseLiveScheduled  DAOPhase = "LIVE_SCHEDULED"
	PhaseLiveActive     DAOPhase = "LIVE_ACTIVE"
	PhaseExchangePeriod DAOPhase = "EXCHANGE_PERIOD"
	PhaseCompleted      DAOPhase = "COMPLETED"
	PhaseEmergency      DAOPhase = "EMERGENCY"
)

// DAOState owns the milestone-event lifecycle of a campaign. Transitions are
// strictly forward except the emergency branch, which is reachable from
// WAITING_FOR_LIVE or LIVE_SCHEDULED after the grace period times out.
type DAOState struct {
	CampaignID     string    `json:"campaign_id"`
	Phase          DAOPhase  `json:"phase"`
	WaitingSince   time.Time `json:"waiting_since,omitzero"`
	ScheduledAt    time.Time `json:"scheduled_at,omitzero"`
	EventRef       string    `json:"event_ref,omitempty"`
	EventStartedAt time.Time `json:"event_started_at,omitzero"`
	EventEndedAt   time.Time `json:"event_ended_at,omitzero"`
	ExchangeEndsAt time.Time `json:"exchange_ends_at,omitzero"`
	EmergencyAt    time.Time `json:"emergency_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewDAOState attaches the lifecycle module to a campaign in INACTIVE.
func NewDAOState(campaignID string, now time.Time) *DAOState {
	return &DAOState{
		CampaignID: campaignID,
		Phase:      PhaseInactive,
		UpdatedAt:  now,
	}
}

// Activate moves INACTIVE -> WAITING_FOR_LIVE at the campaign's very first
// round finalization. Later finalizations find the phase already advanced and
// leave it alone.
func (s *DAOState) Activate(now time.Time) error {
	if s.Phase != PhaseInactive {
		return ErrWrongPhase
	}
	s.Phase = PhaseWaitingForLive
	s.WaitingSince = now
	s.UpdatedAt = now
	return nil
}

// ScheduleLive moves WAITING_FOR_LIVE -> LIVE_SCHEDULED.
func (s *DAOState) ScheduleLive(at time.Time, eventRef string, now time.Time) error {
	if s.Phase != PhaseWaitingForLive {
		return ErrWrongPhase
	}
	if !at.After(now) {
		return ErrInThePast
	}
	s.Phase = PhaseLiveScheduled
	s.ScheduledAt = at
	s.EventRef = eventRef
	s.UpdatedAt = now
	return nil
}

// StartLive moves LIVE_SCHEDULED -> LIVE_ACTIVE once the scheduled time has
// been reached.
func (s *DAOState) StartLive(now time.Time) error {
	if s.Phase != PhaseLiveScheduled {
		return ErrWrongPhase
	}
	if now.Before(s.ScheduledAt) {
		return ErrTooEarly
	}
	s.Phase = PhaseLiveActive
	s.EventStartedAt = now
	s.UpdatedAt = now
	return nil
}

// EndLive moves LIVE_ACTIVE -> EXCHANGE_PERIOD if the event ran at least
// minDuration, and opens a fixed-length exchange window.
func (s *DAOState) EndLive(minDuration, exchangeWindow time.Duration, now time.Time) error {
	if s.Phase != PhaseLiveActive {
		return ErrWrongPhase
	}
	if now.Sub(s.EventStartedAt) < minDuration {
		return ErrTooShort
	}
	s.Phase = PhaseExchangePeriod
	s.EventEndedAt = now
	s.ExchangeEndsAt = now.Add(exchangeWindow)
	s.UpdatedAt = now
	return nil
}

// CompleteExchange moves EXCHANGE_PERIOD -> COMPLETED once the window elapses.
func (s *DAOState) CompleteExchange(now time.Time) error {
	if s.Phase != PhaseExchangePeriod {
		return ErrWrongPhase
	}
	if now.Before(s.ExchangeEndsAt) {
		return ErrTooEarly
	}
	s.Phase = PhaseCompleted
	s.UpdatedAt = now
	return nil
}

// EmergencyDue reports whether the grace period since entering
// WAITING_FOR_LIVE has elapsed without the live event ever starting.
func (s *DAOState) EmergencyDue(grace time.Duration, now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Phase != PhaseWaitingForLive && s.Phase != PhaseLiveScheduled {
		return false
	}
	return !now.Before(s.WaitingSince.Add(grace))
}

// EnableEmergency moves into the terminal EMERGENCY phase. Every outstanding
// certificate, from any round, becomes withdrawable exactly once.
func (s *DAOState) EnableEmergency(grace time.Duration, now time.Time) error {
	if s.Phase != PhaseWaitingForLive && s.Phase != PhaseLiveScheduled {
		return ErrWrongPhase
	}
	if !s.EmergencyDue(grace, now) {
		return ErrTooEarly
	}
	s.Phase = PhaseEmergency
	s.EmergencyAt = now
	s.UpdatedAt = now
	return nil
}

// EffectivePhase reports the phase as observed at `now`: an exchange period
// whose window elapsed reads as COMPLETED even before the trigger persists it.
func (s *DAOState) EffectivePhase(now time.Time) DAOPhase {
	if s == nil {
		return PhaseInactive
	}
	if s.Phase == PhaseExchangePeriod && !now.Before(s.ExchangeEndsAt) {
		return PhaseCompleted
	}
	return s.Phase
}
