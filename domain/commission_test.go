package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetAmountTruncatesTowardPlatform(t *testing.T) {
	tests := []struct {
		gross   int64
		rate    int64
		wantNet int64
	}{
		{gross: 100, rate: 5, wantNet: 95},
		{gross: 100, rate: 0, wantNet: 100},
		{gross: 100, rate: 100, wantNet: 0},
		// truncation always rounds the holder's share down
		{gross: 99, rate: 5, wantNet: 94},  // 94.05
		{gross: 10, rate: 33, wantNet: 6},  // 6.7
		{gross: 1, rate: 1, wantNet: 0},    // 0.99
		{gross: 3, rate: 50, wantNet: 1},   // 1.5
		{gross: 1000, rate: 7, wantNet: 930},
	}

	for _, tt := range tests {
		net := NetAmount(tt.gross, tt.rate)
		assert.Equal(t, tt.wantNet, net, "gross=%d rate=%d", tt.gross, tt.rate)
		assert.Equal(t, tt.gross-tt.wantNet, CommissionAmount(tt.gross, tt.rate))
		// the two shares always reassemble the gross
		assert.Equal(t, tt.gross, net+CommissionAmount(tt.gross, tt.rate))
	}
}
