package models

// Progress is the progression snapshot returned to callers.
type Progress struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Level              int    `json:"level"`
	Experience         int64  `json:"experience"`
	NextLevelThreshold int64  `json:"next_level_threshold"`
}

type ExperienceResult struct {
	Progress
	CanLevelUp bool   `json:"can_level_up"`
	Message    string `json:"message"`
}

type LevelUpResult struct {
	Progress
	LevelsGained int    `json:"levels_gained"`
	Ranking      int    `json:"ranking"`
	Message      string `json:"message"`
}

// AchievementResult lists the entries appended by one AddAchievements call and
// the names skipped because the ledger already had them.
type AchievementResult struct {
	PlayerID string        `json:"player_id"`
	Added    []Achievement `json:"added"`
	Skipped  []string      `json:"skipped,omitempty"`
	Message  string        `json:"message"`
}
