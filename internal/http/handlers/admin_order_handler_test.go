package handlers_test

import (
	"net/http"
	"testing"
)

func TestAdminDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	adminTok := env.token(t, "admin@paperback.test")

	resp, err := env.app.Test(jsonReq("GET", "/api/admin/dashboard", adminTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusOK)

	var stats struct {
		Users  int `json:"users"`
		Books  int `json:"books"`
		Orders int `json:"orders"`
	}
	decodeBody(t, resp, &stats)
	if stats.Users != 2 || stats.Books != 3 {
		t.Fatalf("stats = %+v, want seeded 2 users / 3 books", stats)
	}
}

func TestAdminDashboardRejectsRegularUsers(t *testing.T) {
	env := newTestEnv(t)
	readerTok := env.token(t, "reader@paperback.test")

	resp, err := env.app.Test(jsonReq("GET", "/api/admin/dashboard", readerTok, nil))
	if err != nil {
		t.Fatal(err)
	}
	wantStatus(t, resp, http.StatusForbidden)
}
