package collection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
	colUC "newsdigest/internal/usecase/collection"
)

// ---- in-memory stub ----

type stubRepo struct {
	cols     map[int64]*entity.Collection
	articles map[int64]*entity.SavedArticle
	nextID   int64
	err      error // forced error injection
}

func newStub() *stubRepo {
	return &stubRepo{
		cols:     map[int64]*entity.Collection{},
		articles: map[int64]*entity.SavedArticle{},
		nextID:   1,
	}
}

func (s *stubRepo) Create(_ context.Context, col *entity.Collection) error {
	if s.err != nil {
		return s.err
	}
	col.ID = s.nextID
	col.CreatedAt = time.Now()
	s.nextID++
	s.cols[col.ID] = col
	return nil
}

func (s *stubRepo) ListByOwner(_ context.Context, userID int64) ([]repository.CollectionWithArticles, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []repository.CollectionWithArticles
	for _, c := range s.cols {
		if c.UserID == userID {
			out = append(out, repository.CollectionWithArticles{Collection: c, Articles: s.articlesOf(c.ID)})
		}
	}
	return out, nil
}

func (s *stubRepo) GetOwned(_ context.Context, id, userID int64) (*repository.CollectionWithArticles, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.cols[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	return &repository.CollectionWithArticles{Collection: c, Articles: s.articlesOf(id)}, nil
}

func (s *stubRepo) Rename(_ context.Context, id, userID int64, name string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	c, ok := s.cols[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	c.Name = name
	return true, nil
}

func (s *stubRepo) Delete(_ context.Context, id, userID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	c, ok := s.cols[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(s.cols, id)
	for aid, a := range s.articles {
		if a.CollectionID == id {
			delete(s.articles, aid)
		}
	}
	return true, nil
}

func (s *stubRepo) SaveArticle(_ context.Context, article *entity.SavedArticle) error {
	if s.err != nil {
		return s.err
	}
	for _, a := range s.articles {
		if a.CollectionID == article.CollectionID && a.URL == article.URL {
			return repository.ErrDuplicateArticleURL
		}
	}
	article.ID = s.nextID
	s.nextID++
	s.articles[article.ID] = article
	return nil
}

func (s *stubRepo) RemoveArticle(_ context.Context, collectionID, articleID int64) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	a, ok := s.articles[articleID]
	if !ok || a.CollectionID != collectionID {
		return false, nil
	}
	delete(s.articles, articleID)
	return true, nil
}

func (s *stubRepo) articlesOf(collectionID int64) []entity.SavedArticle {
	var out []entity.SavedArticle
	for _, a := range s.articles {
		if a.CollectionID == collectionID {
			out = append(out, *a)
		}
	}
	return out
}

// ---- tests ----

func TestCreate_trimsAndValidatesName(t *testing.T) {
	svc := colUC.NewService(newStub())

	col, err := svc.Create(context.Background(), 1, "  Reading List  ")
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if col.Name != "Reading List" || col.ID == 0 {
		t.Fatalf("collection = %+v", col)
	}

	if _, err := svc.Create(context.Background(), 1, "   "); err == nil {
		t.Fatalf("blank name must be rejected")
	} else {
		var ve *entity.ValidationError
		if !errors.As(err, &ve) || ve.Field != "name" {
			t.Fatalf("want ValidationError on name, got %v", err)
		}
	}
}

func TestGet_ownershipLooksLikeAbsence(t *testing.T) {
	repo := newStub()
	svc := colUC.NewService(repo)

	col, err := svc.Create(context.Background(), 1, "Tech")
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}

	if _, err := svc.Get(context.Background(), col.ID, 2); !errors.Is(err, colUC.ErrCollectionNotFound) {
		t.Fatalf("other user's lookup: want ErrCollectionNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), 999, 1); !errors.Is(err, colUC.ErrCollectionNotFound) {
		t.Fatalf("missing id: want ErrCollectionNotFound, got %v", err)
	}

	got, err := svc.Get(context.Background(), col.ID, 1)
	if err != nil || got.Collection.ID != col.ID {
		t.Fatalf("owner lookup failed: %+v err=%v", got, err)
	}
}

func TestRenameAndDelete_notFound(t *testing.T) {
	repo := newStub()
	svc := colUC.NewService(repo)
	col, _ := svc.Create(context.Background(), 1, "Tech")

	if err := svc.Rename(context.Background(), col.ID, 2, "Mine now"); !errors.Is(err, colUC.ErrCollectionNotFound) {
		t.Fatalf("rename by non-owner: want ErrCollectionNotFound, got %v", err)
	}
	if err := svc.Rename(context.Background(), col.ID, 1, "Science"); err != nil {
		t.Fatalf("Rename err=%v", err)
	}
	if repo.cols[col.ID].Name != "Science" {
		t.Fatalf("name = %q", repo.cols[col.ID].Name)
	}

	if err := svc.Delete(context.Background(), col.ID, 2); !errors.Is(err, colUC.ErrCollectionNotFound) {
		t.Fatalf("delete by non-owner: want ErrCollectionNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), col.ID, 1); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if len(repo.cols) != 0 {
		t.Fatalf("collection not removed")
	}
}

func TestAddArticle_duplicateURLIsDistinctError(t *testing.T) {
	repo := newStub()
	svc := colUC.NewService(repo)
	first, _ := svc.Create(context.Background(), 1, "Tech")
	second, _ := svc.Create(context.Background(), 1, "Science")

	in := colUC.ArticleInput{Title: "Go 1.26 released", URL: "https://example.com/go"}

	if _, err := svc.AddArticle(context.Background(), first.ID, 1, in); err != nil {
		t.Fatalf("first save err=%v", err)
	}
	if _, err := svc.AddArticle(context.Background(), first.ID, 1, in); !errors.Is(err, colUC.ErrDuplicateArticle) {
		t.Fatalf("same URL same collection: want ErrDuplicateArticle, got %v", err)
	}
	// Same URL, different collection is allowed.
	if _, err := svc.AddArticle(context.Background(), second.ID, 1, in); err != nil {
		t.Fatalf("same URL other collection err=%v", err)
	}
}

func TestAddArticle_validatesInputAndOwnership(t *testing.T) {
	repo := newStub()
	svc := colUC.NewService(repo)
	col, _ := svc.Create(context.Background(), 1, "Tech")

	if _, err := svc.AddArticle(context.Background(), col.ID, 1, colUC.ArticleInput{URL: "https://example.com"}); err == nil {
		t.Fatalf("missing title must be rejected")
	}
	if _, err := svc.AddArticle(context.Background(), col.ID, 1, colUC.ArticleInput{Title: "t", URL: "not a url"}); err == nil {
		t.Fatalf("malformed URL must be rejected")
	}

	in := colUC.ArticleInput{Title: "t", URL: "https://example.com/a"}
	if _, err := svc.AddArticle(context.Background(), col.ID, 2, in); !errors.Is(err, colUC.ErrCollectionNotFound) {
		t.Fatalf("save into another user's collection: want ErrCollectionNotFound, got %v", err)
	}
}

func TestRemoveArticle(t *testing.T) {
	repo := newStub()
	svc := colUC.NewService(repo)
	col, _ := svc.Create(context.Background(), 1, "Tech")
	art, err := svc.AddArticle(context.Background(), col.ID, 1, colUC.ArticleInput{Title: "t", URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("AddArticle err=%v", err)
	}

	if err := svc.RemoveArticle(context.Background(), col.ID, art.ID, 2); !errors.Is(err, colUC.ErrCollectionNotFound) {
		t.Fatalf("non-owner removal: want ErrCollectionNotFound, got %v", err)
	}
	if err := svc.RemoveArticle(context.Background(), col.ID, 999, 1); !errors.Is(err, colUC.ErrArticleNotFound) {
		t.Fatalf("missing article: want ErrArticleNotFound, got %v", err)
	}
	if err := svc.RemoveArticle(context.Background(), col.ID, art.ID, 1); err != nil {
		t.Fatalf("RemoveArticle err=%v", err)
	}
	if len(repo.articles) != 0 {
		t.Fatalf("article not removed")
	}
}
