package domain

// All monetary values are integers in the smallest unit. Division truncates
// toward zero, which keeps the remainder with the platform so refunds can
// never exceed what the ledger retained.

// NetAmount returns the part of a gross price the ledger keeps after
// commission at ratePercent.
func NetAmount(gross, ratePercent int64) int64 {
	return gross * (100 - ratePercent) / 100
}

// CommissionAmount returns the part forwarded to the treasury at purchase
// time. Defined as the complement of NetAmount so the two always sum to gross.
func CommissionAmount(gross, ratePercent int64) int64 {
	return gross - NetAmount(gross, ratePercent)
}
