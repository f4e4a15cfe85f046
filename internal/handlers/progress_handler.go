package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Player_Progression/internal/services"
	"github.com/Dias221467/Player_Progression/pkg/logger"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// ProgressHandler serves experience, levels, achievements and ranks.
type ProgressHandler struct {
	Progress     *services.ProgressService
	Achievements *services.AchievementService
	Ranking      *services.RankingService
}

func NewProgressHandler(progress *services.ProgressService, achievements *services.AchievementService, ranking *services.RankingService) *ProgressHandler {
	return &ProgressHandler{
		Progress:     progress,
		Achievements: achievements,
		Ranking:      ranking,
	}
}

// GET /players/{id}/progress
func (h *ProgressHandler) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	progress, err := h.Progress.GetProgress(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// PUT /players/{id}/progress with {"experience": <non-negative integer>}
func (h *ProgressHandler) AddExperienceHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSelfOrAdmin(w, r); !ok {
		return
	}

	amount, ok := decodeExperience(w, r)
	if !ok {
		return
	}

	result, err := h.Progress.AddExperience(r.Context(), mux.Vars(r)["id"], amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /players/{id}/level-up
func (h *ProgressHandler) LevelUpHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSelfOrAdmin(w, r); !ok {
		return
	}

	id := mux.Vars(r)["id"]
	result, err := h.Progress.LevelUp(r.Context(), id)
	if errors.Is(err, services.ErrRankingStale) && result != nil {
		// The level up is stored; the reconciler brings the ranking back in line.
		logger.Log.WithError(err).WithField("playerID", id).Warn("Level up stored but ranking not refreshed")
	} else if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// PUT /admin/players/{id}/progress with {"level": n, "experience": n}
func (h *ProgressHandler) SetProgressHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level      *int   `json:"level"`
		Experience *int64 `json:"experience"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Level == nil || body.Experience == nil {
		http.Error(w, "level and experience must be integers", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	progress, err := h.Progress.SetProgress(r.Context(), id, *body.Level, *body.Experience)
	if errors.Is(err, services.ErrRankingStale) && progress != nil {
		logger.Log.WithError(err).WithField("playerID", id).Warn("Progress stored but ranking not refreshed")
	} else if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// GET /players/{id}/achievements
func (h *ProgressHandler) ListAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.Achievements.ListAchievements(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

// POST /players/{id}/achievements with {"achievements": [{"name", "description"}]}
func (h *ProgressHandler) AddAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSelfOrAdmin(w, r); !ok {
		return
	}

	var body struct {
		Achievements []services.AchievementInput `json:"achievements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode achievements request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	result, err := h.Achievements.AddAchievements(r.Context(), mux.Vars(r)["id"], body.Achievements)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if len(result.Added) > 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// GET /players/{id}/rank
func (h *ProgressHandler) PlayerRankHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rank, err := h.Ranking.PlayerRank(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": id,
		"rank":      rank,
	})
}

// GET /ranking
func (h *ProgressHandler) GlobalRankingHandler(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.Ranking.Global(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

// decodeExperience reads {"experience": n} and accepts only JSON integers.
func decodeExperience(w http.ResponseWriter, r *http.Request) (int64, bool) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return 0, false
	}

	num, ok := body["experience"].(json.Number)
	if !ok {
		http.Error(w, "experience must be an integer", http.StatusBadRequest)
		return 0, false
	}
	amount, err := num.Int64()
	if err != nil {
		http.Error(w, "experience must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return amount, true
}
