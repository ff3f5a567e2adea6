package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/devwiki-api/internal/mocks"
	"github.com/devwiki-api/internal/models"
)

func TestMockTagRepo_GetOrCreateRace(t *testing.T) {
	repo := mocks.NewMockTagRepo()
	ctx := context.Background()

	// Concurrent callers racing on the same new title must all land
	// on a single winning row.
	var wg sync.WaitGroup
	results := make([]*models.Tag, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag, err := repo.GetOrCreate(ctx, "contended", "author-1")
			if err != nil {
				t.Errorf("GetOrCreate failed: %v", err)
				return
			}
			results[i] = tag
		}(i)
	}
	wg.Wait()

	if len(repo.Tags) != 1 {
		t.Fatalf("Expected a single tag row, got %d", len(repo.Tags))
	}
	for i := 1; i < len(results); i++ {
		if results[i].ID != results[0].ID {
			t.Errorf("Caller %d got a different row: %s vs %s", i, results[i].ID, results[0].ID)
		}
	}
}

func TestMockRatingRepo_UpsertReplaces(t *testing.T) {
	repo := mocks.NewMockRatingRepo()
	ctx := context.Background()

	vote := &models.ArticleRating{UserID: "u1", ArticleID: "a1", Star: 2}
	if err := repo.Upsert(ctx, vote); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	vote.Star = 5
	if err := repo.Upsert(ctx, vote); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	summary, err := repo.Summary(ctx, "a1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.RateVotes != 1 {
		t.Errorf("Expected 1 vote after revote, got %d", summary.RateVotes)
	}
	if summary.Rating != 5 {
		t.Errorf("Expected rating 5, got %v", summary.Rating)
	}
}

func TestMockRatingRepo_EmptySummary(t *testing.T) {
	repo := mocks.NewMockRatingRepo()

	summary, err := repo.Summary(context.Background(), "never-rated")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Rating != 0 || summary.RateVotes != 0 {
		t.Errorf("Expected zero summary, got %+v", summary)
	}
}

func TestMockArticleRepo_HistoryAppendOnly(t *testing.T) {
	repo := mocks.NewMockArticleRepo()
	ctx := context.Background()

	article := &models.Article{ID: "a1", Slug: "slug", Title: "v1", Body: "first body", Status: models.StatusPosted}
	if err := repo.Create(ctx, article); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 2; i <= 4; i++ {
		article.Title = fmt.Sprintf("v%d", i)
		if err := repo.Update(ctx, article); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	history, err := repo.History(ctx, "a1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("Expected 4 snapshots, got %d", len(history))
	}

	// Newest first; the head mirrors the current row
	if history[0].Title != "v4" {
		t.Errorf("Expected newest snapshot first, got %q", history[0].Title)
	}
	if history[len(history)-1].Title != "v1" {
		t.Errorf("Expected creation snapshot last, got %q", history[len(history)-1].Title)
	}
}

func TestMockArticleRepo_IncrementVisits(t *testing.T) {
	repo := mocks.NewMockArticleRepo()
	ctx := context.Background()

	article := &models.Article{ID: "a1", Slug: "slug", Title: "t", Body: "first body", Status: models.StatusPosted}
	if err := repo.Create(ctx, article); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementVisits(ctx, "a1"); err != nil {
				t.Errorf("IncrementVisits failed: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := repo.GetBySlug(ctx, "slug")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if stored.Visits != 50 {
		t.Errorf("Expected 50 visits, got %d", stored.Visits)
	}
}

func TestMockUserRepo_DuplicateEmail(t *testing.T) {
	repo := mocks.NewMockUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{ID: "u1", Email: "dup@test.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, &models.User{ID: "u2", Email: "dup@test.com"}); err == nil {
		t.Error("Expected duplicate email to be rejected")
	}
}
