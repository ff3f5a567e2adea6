package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/repository"
	"github.com/google/uuid"
)

// MockUserRepo is an in-memory implementation of UserRepository
type MockUserRepo struct {
	mu    sync.Mutex
	Users map[string]*models.User

	CreateFunc func(ctx context.Context, user *models.User) error
}

// Verify interface compliance
var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{Users: make(map[string]*models.User)}
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == user.Email {
			return apperr.Conflict("user with this email already exists")
		}
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[user.ID]; !ok {
		return apperr.NotFound("user")
	}
	cp := *user
	m.Users[user.ID] = &cp
	return nil
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return apperr.NotFound("user")
	}
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepo) List(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.User, 0, len(m.Users))
	for _, u := range m.Users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, page, pageSize), len(all), nil
}

func (m *MockUserRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockTagRepo is an in-memory implementation of TagRepository
type MockTagRepo struct {
	mu   sync.Mutex
	Tags map[string]*models.Tag

	// WithArticles marks tag IDs as attached to at least one article,
	// for the with/without listing variants.
	WithArticles map[string]bool
}

// Verify interface compliance
var _ repository.TagRepository = (*MockTagRepo)(nil)

func NewMockTagRepo() *MockTagRepo {
	return &MockTagRepo{
		Tags:         make(map[string]*models.Tag),
		WithArticles: make(map[string]bool),
	}
}

func (m *MockTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tags {
		if t.Title == tag.Title {
			return apperr.Conflict("tag with this title already exists")
		}
	}
	cp := *tag
	m.Tags[tag.ID] = &cp
	return nil
}

func (m *MockTagRepo) GetOrCreate(ctx context.Context, title, authorID string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tags {
		if t.Title == title {
			cp := *t
			return &cp, nil
		}
	}
	tag := &models.Tag{ID: uuid.NewString(), Title: title}
	if authorID != "" {
		tag.AuthorID = &authorID
	}
	m.Tags[tag.ID] = tag
	cp := *tag
	return &cp, nil
}

func (m *MockTagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tags[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MockTagRepo) List(ctx context.Context) ([]*models.Tag, error) {
	return m.filtered(func(string) bool { return true }), nil
}

func (m *MockTagRepo) ListWithoutArticles(ctx context.Context) ([]*models.Tag, error) {
	return m.filtered(func(id string) bool { return !m.WithArticles[id] }), nil
}

func (m *MockTagRepo) ListWithArticles(ctx context.Context) ([]*models.Tag, error) {
	return m.filtered(func(id string) bool { return m.WithArticles[id] }), nil
}

func (m *MockTagRepo) filtered(keep func(id string) bool) []*models.Tag {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Tag, 0)
	for id, t := range m.Tags {
		if keep(id) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func (m *MockTagRepo) Update(ctx context.Context, tag *models.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tags[tag.ID]; !ok {
		return apperr.NotFound("tag")
	}
	cp := *tag
	m.Tags[tag.ID] = &cp
	return nil
}

func (m *MockTagRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Tags[id]; !ok {
		return apperr.NotFound("tag")
	}
	delete(m.Tags, id)
	return nil
}

func (m *MockTagRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tags), nil
}

// MockArticleRepo is an in-memory implementation of ArticleRepository
type MockArticleRepo struct {
	mu        sync.Mutex
	Articles  map[string]*models.Article // keyed by slug
	Snapshots map[string][]*models.ArticleSnapshot
	TagIDs    map[string][]string

	CreateFunc func(ctx context.Context, article *models.Article) error
}

// Verify interface compliance
var _ repository.ArticleRepository = (*MockArticleRepo)(nil)

func NewMockArticleRepo() *MockArticleRepo {
	return &MockArticleRepo{
		Articles:  make(map[string]*models.Article),
		Snapshots: make(map[string][]*models.ArticleSnapshot),
		TagIDs:    make(map[string][]string),
	}
}

func (m *MockArticleRepo) snapshot(article *models.Article) {
	m.Snapshots[article.ID] = append(m.Snapshots[article.ID], &models.ArticleSnapshot{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		Title:     article.Title,
		Body:      article.Body,
		AuthorID:  article.AuthorID,
	})
}

func (m *MockArticleRepo) Create(ctx context.Context, article *models.Article) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, article)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Title == article.Title {
			return apperr.Conflict("article with this title already exists")
		}
	}
	cp := *article
	m.Articles[article.Slug] = &cp
	m.snapshot(article)
	return nil
}

func (m *MockArticleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[slug]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *MockArticleRepo) List(ctx context.Context, opts repository.ArticleListOptions) ([]*models.Article, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if opts.Status != 0 && a.Status != opts.Status {
			continue
		}
		if opts.AuthorID != "" && a.AuthorID != opts.AuthorID {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(opts.Search)) {
			continue
		}
		cp := *a
		all = append(all, &cp)
	}
	if opts.Sort == "popular" {
		sort.Slice(all, func(i, j int) bool { return all[i].Visits > all[j].Visits })
	} else {
		sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	}
	return paginate(all, opts.Page, opts.PageSize), len(all), nil
}

func (m *MockArticleRepo) Update(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[article.Slug]; !ok {
		return apperr.NotFound("article")
	}
	cp := *article
	m.Articles[article.Slug] = &cp
	m.snapshot(article)
	return nil
}

func (m *MockArticleRepo) SetStatus(ctx context.Context, id string, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return apperr.NotFound("article")
}

func (m *MockArticleRepo) IncrementVisits(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.ID == id {
			a.Visits++
			return a.Visits, nil
		}
	}
	return 0, apperr.NotFound("article")
}

func (m *MockArticleRepo) ReplaceTags(ctx context.Context, articleID string, tagIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TagIDs[articleID] = tagIDs
	return nil
}

func (m *MockArticleRepo) History(ctx context.Context, articleID string) ([]*models.ArticleSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.Snapshots[articleID]
	// Newest first, matching the store ordering
	out := make([]*models.ArticleSnapshot, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		cp := *snaps[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockArticleRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

// MockRatingRepo is an in-memory implementation of RatingRepository
type MockRatingRepo struct {
	mu    sync.Mutex
	Votes map[string]map[string]int // article -> user -> star
}

// Verify interface compliance
var _ repository.RatingRepository = (*MockRatingRepo)(nil)

func NewMockRatingRepo() *MockRatingRepo {
	return &MockRatingRepo{Votes: make(map[string]map[string]int)}
}

func (m *MockRatingRepo) Upsert(ctx context.Context, rating *models.ArticleRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Votes[rating.ArticleID] == nil {
		m.Votes[rating.ArticleID] = make(map[string]int)
	}
	m.Votes[rating.ArticleID][rating.UserID] = rating.Star
	return nil
}

func (m *MockRatingRepo) Summary(ctx context.Context, articleID string) (*models.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	votes := m.Votes[articleID]
	summary := &models.RatingSummary{}
	if len(votes) == 0 {
		return summary, nil
	}
	total := 0
	for _, star := range votes {
		total += star
	}
	summary.RateVotes = len(votes)
	summary.Rating = float64(total) / float64(len(votes))
	return summary, nil
}

// MockCommentRepo is an in-memory implementation of CommentRepository
type MockCommentRepo struct {
	mu       sync.Mutex
	Comments []*models.Comment
}

// Verify interface compliance
var _ repository.CommentRepository = (*MockCommentRepo)(nil)

func NewMockCommentRepo() *MockCommentRepo {
	return &MockCommentRepo{Comments: make([]*models.Comment, 0)}
}

func (m *MockCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *comment
	m.Comments = append(m.Comments, &cp)
	return nil
}

func (m *MockCommentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Comments {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockCommentRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.ArticleID == articleID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCommentRepo) ListDeleted(ctx context.Context, authorID string, page, pageSize int) ([]*models.Comment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.Status != models.StatusDeleted {
			continue
		}
		if authorID != "" && c.AuthorID != authorID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return paginate(out, page, pageSize), len(out), nil
}

func (m *MockCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.Comments {
		if c.ID == comment.ID {
			cp := *comment
			m.Comments[i] = &cp
			return nil
		}
	}
	return apperr.NotFound("comment")
}

func (m *MockCommentRepo) SetStatus(ctx context.Context, id string, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Comments {
		if c.ID == id {
			c.Status = status
			return nil
		}
	}
	return apperr.NotFound("comment")
}

func (m *MockCommentRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Comments), nil
}

// NewRepositories bundles fresh mocks into the repository container
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:    NewMockUserRepo(),
		Tag:     NewMockTagRepo(),
		Article: NewMockArticleRepo(),
		Rating:  NewMockRatingRepo(),
		Comment: NewMockCommentRepo(),
	}
}

func paginate[T any](all []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return all
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []T{}
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
