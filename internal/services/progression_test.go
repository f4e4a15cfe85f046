package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreshold(t *testing.T) {
	assert.Equal(t, int64(2000), Threshold(1))
	assert.Equal(t, int64(3000), Threshold(2))
	assert.Equal(t, int64(11000), Threshold(10))
}

func TestApplyLevelUps(t *testing.T) {
	tests := []struct {
		name       string
		level      int
		experience int64
		wantLevel  int
		wantExp    int64
		wantGained int
	}{
		{"below threshold", 1, 1999, 1, 1999, 0},
		{"exact threshold", 1, 2000, 2, 0, 1},
		{"carry over", 1, 2500, 2, 500, 1},
		{"several levels", 1, 5000, 3, 0, 2},
		{"several levels with rest", 1, 9100, 4, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, exp, gained := applyLevelUps(tt.level, tt.experience)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantExp, exp)
			assert.Equal(t, tt.wantGained, gained)
		})
	}
}

func TestApplyLevelUpsConservesExperience(t *testing.T) {
	total := func(level int, exp int64) int64 {
		for l := 1; l < level; l++ {
			exp += Threshold(l)
		}
		return exp
	}

	for _, exp := range []int64{0, 1999, 2000, 4999, 5000, 123456} {
		level, rest, _ := applyLevelUps(1, exp)
		assert.Equal(t, exp, total(level, rest), "experience %d", exp)
		assert.Less(t, rest, Threshold(level))
	}
}
