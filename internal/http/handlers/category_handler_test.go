package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"paperback/internal/domain"
)

func TestDeleteCategoryWithBooksConflicts(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.token(t, "admin@paperback.test")

	// fiction is seeded with one book.
	resp, err := env.app.Test(jsonReq("DELETE", "/api/categories/fiction", adminTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusConflict)

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)
	if body.Message != "category still has books" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestCreateThenDeleteEmptyCategory(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.token(t, "admin@paperback.test")

	resp, err := env.app.Test(jsonReq("POST", "/api/categories", adminTok, fiber.Map{
		"name": "Poetry", "description": "Verse",
	}))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusCreated)

	var cat domain.Category
	decodeBody(t, resp, &cat)
	if cat.ID == "" || cat.Name != "Poetry" {
		t.Fatalf("created = %+v", cat)
	}

	resp2, err := env.app.Test(jsonReq("DELETE", "/api/categories/"+cat.ID, adminTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp2, http.StatusOK)
}

func TestRenameCategoryPreservesDescription(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.token(t, "admin@paperback.test")

	resp, err := env.app.Test(jsonReq("POST", "/api/categories", adminTok, fiber.Map{
		"name": "Poetry", "description": "Verse and rhyme",
	}))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusCreated)
	var cat domain.Category
	decodeBody(t, resp, &cat)

	resp2, err := env.app.Test(jsonReq("PUT", "/api/categories/"+cat.ID, adminTok, fiber.Map{
		"name": "Poetry Renamed", "description": cat.Description,
	}))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp2, http.StatusOK)

	resp3, err := env.app.Test(jsonReq("GET", "/api/categories/"+cat.ID, adminTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	var got domain.Category
	decodeBody(t, resp3, &got)
	if got.Name != "Poetry Renamed" || got.Description != "Verse and rhyme" {
		t.Fatalf("after rename: %+v", got)
	}
}

func TestListCategoriesCarriesBookCounts(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.token(t, "admin@paperback.test")

	resp, err := env.app.Test(jsonReq("GET", "/api/categories", adminTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusOK)

	var body struct {
		Data []domain.Category `json:"data"`
	}
	decodeBody(t, resp, &body)
	if len(body.Data) != 3 {
		t.Fatalf("categories = %d, want 3", len(body.Data))
	}
	for _, c := range body.Data {
		if c.ID == "fiction" && c.BookCount != 1 {
			t.Fatalf("fiction book_count = %d, want 1", c.BookCount)
		}
	}
}
