package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"teammate-tracker/internal/domain"
	"teammate-tracker/internal/service"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type TrackerServer struct {
	historySvc *service.HistoryService
	ingestSvc  *service.IngestService
	validate   *validator.Validate
	logger     zerolog.Logger
}

func NewTrackerServer(historySvc *service.HistoryService, ingestSvc *service.IngestService, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{
		historySvc: historySvc,
		ingestSvc:  ingestSvc,
		validate:   validator.New(),
		logger:     logger,
	}
}

type historyRequest struct {
	MyIDs []string `json:"myIds" validate:"required,min=1,dive,len=17,numeric"`
	Query string   `json:"query" validate:"required"`
}

type matchResponse struct {
	ID           string   `json:"id"`
	Map          string   `json:"map"`
	Type         string   `json:"type"`
	Date         string   `json:"date"`
	PlayersTeam1 []string `json:"players_team1"`
	PlayersTeam2 []string `json:"players_team2"`
	RoundsTeam1  *int     `json:"rounds_team1,omitempty"`
	RoundsTeam2  *int     `json:"rounds_team2,omitempty"`
	Vs           bool     `json:"vs"`
}

type rankingResponse struct {
	Status     string `json:"status"`
	Elo        int    `json:"elo,omitempty"`
	SkillLevel int    `json:"skillLevel,omitempty"`
	Game       string `json:"game,omitempty"`
}

type historyResponse struct {
	ResolvedID        string          `json:"resolvedId"`
	Name              string          `json:"name"`
	ProfilePictureURL string          `json:"profilePictureUrl"`
	Matches           []matchResponse `json:"matches"`
	Ranking           rankingResponse `json:"ranking"`
	VsWinRate         float64         `json:"vsWinRate"`
	WithWinRate       float64         `json:"withWinRate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *TrackerServer) History(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	result, err := s.historySvc.Query(r.Context(), req.MyIDs, req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrUnresolvable) {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid Url"})
			return
		}
		s.logger.Error().Err(err).Msg("history query failed")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	respondJSON(w, http.StatusOK, toHistoryResponse(result))
}

// Ingest triggers one ingestion run; the external scheduler posts here. The
// run continues after the response.
func (s *TrackerServer) Ingest(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.ingestSvc.Ingest(ctx); err != nil {
			s.logger.Error().Err(err).Msg("triggered ingestion run failed")
		}
	}()
	w.WriteHeader(http.StatusAccepted)
}

func (s *TrackerServer) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func toHistoryResponse(result *domain.HistoryResult) historyResponse {
	matches := make([]matchResponse, len(result.Matches))
	for i, m := range result.Matches {
		matches[i] = matchResponse{
			ID:           m.MatchID,
			Map:          m.Map,
			Type:         m.MatchType,
			Date:         m.FinishedAt.Format(time.RFC3339),
			PlayersTeam1: m.PlayersTeam1,
			PlayersTeam2: m.PlayersTeam2,
			RoundsTeam1:  m.RoundsTeam1,
			RoundsTeam2:  m.RoundsTeam2,
			Vs:           m.Vs,
		}
	}

	return historyResponse{
		ResolvedID:        result.ResolvedID,
		Name:              result.Profile.Name,
		ProfilePictureURL: result.Profile.AvatarURL,
		Matches:           matches,
		Ranking: rankingResponse{
			Status:     string(result.Ranking.Status),
			Elo:        result.Ranking.Elo,
			SkillLevel: result.Ranking.SkillLevel,
			Game:       result.Ranking.Game,
		},
		VsWinRate:   result.VsWinRate,
		WithWinRate: result.WithWinRate,
	}
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
