package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examflow-ng/paper-service/internal/models"
	"github.com/examflow-ng/paper-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

// GetDashboard builds the landing view: status counts, the most recent
// papers, and for officers the pending review queue.
func (s *dashboardService) GetDashboard(ctx context.Context, actor Actor) (*DashboardResponse, error) {
	counts, err := s.repo.Paper().CountByStatus(ctx, actor.SchoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to count papers: %w", err)
	}

	recentFilters := repositories.PaperFilters{
		SchoolID:  &actor.SchoolID,
		Limit:     10,
		SortBy:    "updated_at",
		SortOrder: "desc",
	}
	if !actor.IsExamOfficer() {
		recentFilters.AuthorID = &actor.UserID
	}
	recent, _, err := s.repo.Paper().List(ctx, recentFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent papers: %w", err)
	}

	response := &DashboardResponse{
		Counts: counts,
		Recent: toPaperResponses(actor, recent),
	}

	if actor.IsExamOfficer() {
		pending := models.StatusPendingReview
		queue, _, err := s.repo.Paper().List(ctx, repositories.PaperFilters{
			SchoolID:  &actor.SchoolID,
			Status:    &pending,
			Limit:     50,
			SortBy:    "updated_at",
			SortOrder: "asc",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list review queue: %w", err)
		}
		response.ReviewQueue = toPaperResponses(actor, queue)
	}

	return response, nil
}

func toPaperResponses(actor Actor, papers []*models.ExamPaper) []*PaperResponse {
	out := make([]*PaperResponse, 0, len(papers))
	for _, paper := range papers {
		out = append(out, buildPaperResponse(actor, paper))
	}
	return out
}
