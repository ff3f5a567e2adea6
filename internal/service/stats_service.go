package service

import (
	"context"

	"github.com/devwiki-api/internal/repository"
)

// statsService aggregates entity counts for the metrics endpoint
type statsService struct {
	repos *repository.Repositories
}

func newStatsService(repos *repository.Repositories) StatsService {
	return &statsService{repos: repos}
}

// Counts returns row totals per entity
func (s *statsService) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	users, err := s.repos.User.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["users"] = users

	articles, err := s.repos.Article.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["articles"] = articles

	comments, err := s.repos.Comment.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["comments"] = comments

	tags, err := s.repos.Tag.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts["tags"] = tags

	return counts, nil
}
