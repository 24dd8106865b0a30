package domain

// RefundReason is the stable code explaining a refund eligibility decision.
type RefundReason string

const (
	ReasonAlreadyRedeemed       RefundReason = "ALREADY_REDEEMED"
	ReasonActiveRoundWithdrawal RefundReason = "ACTIVE_ROUND_WITHDRAWAL"
	ReasonExchangeWindow        RefundReason = "EXCHANGE_WINDOW"
	ReasonNotEligible           RefundReason = "NOT_ELIGIBLE"
	// ReasonEmergency is never produced by the decision table; it marks
	// payouts made through the emergency withdrawal path.
	ReasonEmergency RefundReason = "EMERGENCY"
)

// EvaluateRefund applies the refund decision table in order:
//
//  1. a burned certificate is never refundable again;
//  2. a certificate from the currently active, unfinalized round may be
//     withdrawn;
//  3. during the exchange window, certificates from any round are refundable;
//  4. otherwise not eligible; in particular a certificate whose round was
//     finalized while a later round is active stays locked until the exchange
//     window opens.
func EvaluateRefund(cert *Certificate, current *Round, phase DAOPhase) (bool, RefundReason) {
	if cert == nil {
		return false, ReasonNotEligible
	}
	if cert.Burned {
		return false, ReasonAlreadyRedeemed
	}
	if current != nil && cert.Round == current.Number && current.Active && !current.Finalized {
		return true, ReasonActiveRoundWithdrawal
	}
	if phase == PhaseExchangePeriod {
		return true, ReasonExchangeWindow
	}
	return false, ReasonNotEligible
}
