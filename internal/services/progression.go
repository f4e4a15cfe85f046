package services

import "github.com/Dias221467/Player_Progression/internal/models"

// Threshold is the experience needed to leave level.
func Threshold(level int) int64 {
	return int64(level+1) * 1000
}

// applyLevelUps spends experience on as many levels as it covers. Leftover
// experience carries over, so level and experience together are conserved.
func applyLevelUps(level int, experience int64) (int, int64, int) {
	gained := 0
	for experience >= Threshold(level) {
		experience -= Threshold(level)
		level++
		gained++
	}
	return level, experience, gained
}

func progressOf(p *models.Player) models.Progress {
	return models.Progress{
		ID:                 p.ID,
		Name:               p.Name,
		Level:              p.Level,
		Experience:         p.Experience,
		NextLevelThreshold: Threshold(p.Level),
	}
}
