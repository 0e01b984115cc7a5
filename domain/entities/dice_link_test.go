package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiceLink_Validate(t *testing.T) {
	valid := DiceLink{
		MinBet:     10,
		MaxBet:     1000,
		Chance:     50,
		Multiplier: 2,
	}

	tests := []struct {
		name    string
		mutate  func(*DiceLink)
		wantErr bool
	}{
		{"valid", func(l *DiceLink) {}, false},
		{"zero min bet", func(l *DiceLink) { l.MinBet = 0 }, true},
		{"min above max", func(l *DiceLink) { l.MinBet = 2000 }, true},
		{"negative chance", func(l *DiceLink) { l.Chance = -1 }, true},
		{"chance above 100", func(l *DiceLink) { l.Chance = 101 }, true},
		{"zero multiplier", func(l *DiceLink) { l.Multiplier = 0 }, true},
		{"haircut above 100", func(l *DiceLink) { l.Haircut = 150 }, true},
		{"boundary chances", func(l *DiceLink) { l.Chance = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := valid
			tt.mutate(&link)
			err := link.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiceLink_WinAmount(t *testing.T) {
	link := DiceLink{Multiplier: 2.5}

	// Fractional payouts round down.
	assert.Equal(t, int64(250), link.WinAmount(100))
	assert.Equal(t, int64(2), link.WinAmount(1))
	assert.Equal(t, int64(7), link.WinAmount(3))
}

func TestDiceLink_AcceptsAmount(t *testing.T) {
	link := DiceLink{MinBet: 10, MaxBet: 1000}

	assert.True(t, link.AcceptsAmount(10))
	assert.True(t, link.AcceptsAmount(1000))
	assert.False(t, link.AcceptsAmount(9))
	assert.False(t, link.AcceptsAmount(1001))
}
