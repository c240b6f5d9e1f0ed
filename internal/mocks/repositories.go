// Package mocks provides in-memory repository implementations for tests
package mocks

import (
	"context"
	"time"

	"github.com/seichi-note/content-api/internal/models"
	"github.com/seichi-note/content-api/internal/repository"
)

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	Articles    map[string]*models.Article
	SlugToID    map[string]string
	UpdateError error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		SlugToID: make(map[string]string),
	}
}

func (m *MockArticleRepository) CreateDraft(ctx context.Context, article *models.Article) error {
	if id, taken := m.SlugToID[article.Slug]; taken && id != article.ID {
		return repository.ErrSlugExists
	}
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now
	copied := *article
	m.Articles[article.ID] = &copied
	m.SlugToID[article.Slug] = article.ID
	return nil
}

func (m *MockArticleRepository) UpdateDraft(ctx context.Context, article *models.Article) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	article.UpdatedAt = time.Now()
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepository) UpdateState(ctx context.Context, article *models.Article) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if id, taken := m.SlugToID[article.Slug]; taken && id != article.ID {
		return repository.ErrSlugExists
	}
	if prev, ok := m.Articles[article.ID]; ok && prev.Slug != article.Slug {
		delete(m.SlugToID, prev.Slug)
	}
	copied := *article
	m.Articles[article.ID] = &copied
	m.SlugToID[article.Slug] = article.ID
	return nil
}

func (m *MockArticleRepository) UpdateSlug(ctx context.Context, id, slug string) error {
	article, ok := m.Articles[id]
	if !ok {
		return nil
	}
	if owner, taken := m.SlugToID[slug]; taken && owner != id {
		return repository.ErrSlugExists
	}
	delete(m.SlugToID, article.Slug)
	article.Slug = slug
	article.UpdatedAt = time.Now()
	m.SlugToID[slug] = id
	return nil
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	article, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	copied := *article
	return &copied, nil
}

func (m *MockArticleRepository) FindBySlug(ctx context.Context, slug, language string) (*models.Article, error) {
	for _, a := range m.Articles {
		if a.Slug == slug && a.Language == language {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Article, error) {
	var out []*models.Article
	for _, a := range m.Articles {
		if a.AuthorID == authorID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockArticleRepository) ListByStatus(ctx context.Context, status models.ArticleStatus) ([]*models.Article, error) {
	var out []*models.Article
	for _, a := range m.Articles {
		if a.Status == status {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, ok := m.SlugToID[slug]
	return ok, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	if a, ok := m.Articles[id]; ok {
		delete(m.SlugToID, a.Slug)
		delete(m.Articles, id)
	}
	return nil
}

// MockRevisionRepository is a mock implementation of
// ArticleRevisionRepository. ApproveAndApply applies the article copy
// and city links against the sibling mocks, mirroring the repository
// transaction.
type MockRevisionRepository struct {
	Revisions map[string]*models.ArticleRevision
	Articles  *MockArticleRepository
	Cities    *MockCityRepository
}

func NewMockRevisionRepository(articles *MockArticleRepository, cities *MockCityRepository) *MockRevisionRepository {
	return &MockRevisionRepository{
		Revisions: make(map[string]*models.ArticleRevision),
		Articles:  articles,
		Cities:    cities,
	}
}

func (m *MockRevisionRepository) Create(ctx context.Context, rev *models.ArticleRevision) error {
	copied := *rev
	m.Revisions[rev.ID] = &copied
	return nil
}

func (m *MockRevisionRepository) UpdateDraft(ctx context.Context, rev *models.ArticleRevision) error {
	rev.UpdatedAt = time.Now()
	copied := *rev
	m.Revisions[rev.ID] = &copied
	return nil
}

func (m *MockRevisionRepository) UpdateState(ctx context.Context, rev *models.ArticleRevision) error {
	copied := *rev
	m.Revisions[rev.ID] = &copied
	return nil
}

func (m *MockRevisionRepository) FindByID(ctx context.Context, id string) (*models.ArticleRevision, error) {
	rev, ok := m.Revisions[id]
	if !ok {
		return nil, nil
	}
	copied := *rev
	return &copied, nil
}

func (m *MockRevisionRepository) FindActiveByArticle(ctx context.Context, articleID string) (*models.ArticleRevision, error) {
	for _, rev := range m.Revisions {
		if rev.ArticleID == articleID && rev.IsActive() {
			copied := *rev
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockRevisionRepository) ApproveAndApply(ctx context.Context, rev *models.ArticleRevision, article *models.Article, cityIDs []string) error {
	revCopy := *rev
	m.Revisions[rev.ID] = &revCopy
	artCopy := *article
	m.Articles.Articles[article.ID] = &artCopy
	if m.Cities != nil {
		m.Cities.SetArticleCityIDs(ctx, article.ID, cityIDs)
	}
	return nil
}

// MockCityRepository is a mock implementation of CityRepository
type MockCityRepository struct {
	Cities        map[string]*models.City
	Aliases       map[string]map[string]bool
	ArticleLinks  map[string]map[string]bool
	RevisionLinks map[string]map[string]bool
	Redirects     map[string]string
}

func NewMockCityRepository() *MockCityRepository {
	return &MockCityRepository{
		Cities:        make(map[string]*models.City),
		Aliases:       make(map[string]map[string]bool),
		ArticleLinks:  make(map[string]map[string]bool),
		RevisionLinks: make(map[string]map[string]bool),
		Redirects:     make(map[string]string),
	}
}

func (m *MockCityRepository) FindByID(ctx context.Context, id string) (*models.City, error) {
	city, ok := m.Cities[id]
	if !ok {
		return nil, nil
	}
	copied := *city
	return &copied, nil
}

func (m *MockCityRepository) ResolveByName(ctx context.Context, name string) (*models.City, error) {
	for _, c := range m.Cities {
		if c.Name == name || c.NameEn == name {
			copied := *c
			return &copied, nil
		}
	}
	for cityID, aliases := range m.Aliases {
		if aliases[name] {
			if c, ok := m.Cities[cityID]; ok {
				copied := *c
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (m *MockCityRepository) ListCityIDsByArticle(ctx context.Context, articleID string) ([]string, error) {
	return keys(m.ArticleLinks[articleID]), nil
}

func (m *MockCityRepository) ListCityIDsByRevision(ctx context.Context, revisionID string) ([]string, error) {
	return keys(m.RevisionLinks[revisionID]), nil
}

func (m *MockCityRepository) SetArticleCityIDs(ctx context.Context, articleID string, cityIDs []string) error {
	m.ArticleLinks[articleID] = toSet(cityIDs)
	return nil
}

func (m *MockCityRepository) SetRevisionCityIDs(ctx context.Context, revisionID string, cityIDs []string) error {
	m.RevisionLinks[revisionID] = toSet(cityIDs)
	return nil
}

func (m *MockCityRepository) MergeCities(ctx context.Context, fromID, toID string) error {
	from, to := m.Cities[fromID], m.Cities[toID]

	for _, links := range []map[string]map[string]bool{m.ArticleLinks, m.RevisionLinks} {
		for _, set := range links {
			if set[fromID] {
				set[toID] = true
				delete(set, fromID)
			}
		}
	}

	if m.Aliases[toID] == nil {
		m.Aliases[toID] = make(map[string]bool)
	}
	for alias := range m.Aliases[fromID] {
		m.Aliases[toID][alias] = true
	}
	delete(m.Aliases, fromID)
	if from != nil {
		m.Aliases[toID][from.Name] = true
	}

	if from != nil && to != nil {
		m.Redirects[from.Slug] = to.Slug
	}
	if from != nil {
		from.Hidden = true
	}
	return nil
}

func keys(set map[string]bool) []string {
	var out []string
	for k := range set {
		out = append(out, k)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
