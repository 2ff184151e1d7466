package services_test

import (
	"errors"
	"testing"

	"paperback/internal/domain"
	"paperback/internal/repos"
	"paperback/internal/services"
)

func catalogFixture(t *testing.T) (*services.CatalogService, *fakePublisher) {
	t.Helper()
	db := memdb(t)
	pub := &fakePublisher{}
	return services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewBookRepo(db), pub), pub
}

func TestListBooksFilters(t *testing.T) {
	svc, _ := catalogFixture(t)

	page, err := svc.ListBooks("", "", 1, 12)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || len(page.Books) != 3 {
		t.Fatalf("all books: total=%d len=%d", page.Total, len(page.Books))
	}

	page, err = svc.ListBooks("go programming", "", 1, 12)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Books[0].ID != "bk-gopl" {
		t.Fatalf("search: %+v", page)
	}

	page, err = svc.ListBooks("", "fiction", 1, 12)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Books[0].ID != "bk-gatsby" {
		t.Fatalf("category filter: %+v", page)
	}
}

func TestListBooksPagination(t *testing.T) {
	svc, _ := catalogFixture(t)

	page, err := svc.ListBooks("", "", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Page != 2 || page.Total != 3 || len(page.Books) != 1 {
		t.Fatalf("page 2: total=%d len=%d page=%d", page.Total, len(page.Books), page.Page)
	}
}

func TestCreateBookRequiresCategory(t *testing.T) {
	svc, _ := catalogFixture(t)

	b := &domain.Book{CategoryID: "no-such", Title: "X", Author: "Y", Price: 1}
	if err := svc.CreateBook(b); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	b.CategoryID = "fiction"
	if err := svc.CreateBook(b); err != nil {
		t.Fatal(err)
	}
	if b.ID == "" {
		t.Fatal("no id assigned")
	}
}

func TestUpdateBookPublishesOnStockChange(t *testing.T) {
	svc, pub := catalogFixture(t)

	b, err := svc.GetBook("bk-gopl")
	if err != nil {
		t.Fatal(err)
	}

	// Price change alone stays quiet.
	b.Price = 44.95
	if err := svc.UpdateBook(&b); err != nil {
		t.Fatal(err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("events after price change = %+v", pub.events)
	}

	b.Stock = 20
	if err := svc.UpdateBook(&b); err != nil {
		t.Fatal(err)
	}
	if len(pub.events) != 1 || pub.events[0] != (stockEvent{id: "bk-gopl", stock: 20, title: b.Title}) {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestDeleteCategoryGuard(t *testing.T) {
	svc, _ := catalogFixture(t)

	// fiction still holds bk-gatsby.
	if err := svc.DeleteCategory("fiction"); !errors.Is(err, services.ErrCategoryInUse) {
		t.Fatalf("err = %v, want ErrCategoryInUse", err)
	}

	c := &domain.Category{Name: "Poetry"}
	if err := svc.CreateCategory(c); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCategory(c.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
}

func TestCategoryBookCount(t *testing.T) {
	svc, _ := catalogFixture(t)

	cats, err := svc.ListCategories()
	if err != nil {
		t.Fatal(err)
	}
	byID := map[string]domain.Category{}
	for _, c := range cats {
		byID[c.ID] = c
	}
	if byID["fiction"].BookCount != 1 || byID["programming"].BookCount != 1 {
		t.Fatalf("book counts: %+v", byID)
	}
}
