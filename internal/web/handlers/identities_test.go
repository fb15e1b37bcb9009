package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-gate/internal/store"
)

func TestIdentitiesList(t *testing.T) {
	st := newTestStore(t)
	for _, id := range []string{"alice", "bob"} {
		if err := st.Save(id, []byte("img")); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}
	h := NewIdentitiesHandler(st, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/identities", nil)
	recorder := httptest.NewRecorder()

	h.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Identities []store.Identity `json:"identities"`
		Count      int              `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 2 {
		t.Errorf("expected count 2, got %d", resp.Count)
	}
	if len(resp.Identities) != 2 || resp.Identities[0].ID != "alice" {
		t.Errorf("unexpected identities: %+v", resp.Identities)
	}
}

func TestIdentitiesList_Empty(t *testing.T) {
	h := NewIdentitiesHandler(newTestStore(t), &fakeInvalidator{})

	recorder := httptest.NewRecorder()
	h.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/identities", nil))

	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Identities []store.Identity `json:"identities"`
		Count      int              `json:"count"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 0 || resp.Identities == nil {
		t.Errorf("expected empty array, got %+v", resp)
	}
}

func TestIdentitiesGet(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("alice", []byte("img")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	h := NewIdentitiesHandler(st, &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/identities/alice", nil)
	req = requestWithChiParams(req, map[string]string{"id": "alice"})
	recorder := httptest.NewRecorder()

	h.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var rec store.Identity
	parseJSONResponse(t, recorder, &rec)
	if rec.ID != "alice" {
		t.Errorf("expected alice, got %q", rec.ID)
	}
}

func TestIdentitiesGet_NotFound(t *testing.T) {
	h := NewIdentitiesHandler(newTestStore(t), &fakeInvalidator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/identities/ghost", nil)
	req = requestWithChiParams(req, map[string]string{"id": "ghost"})
	recorder := httptest.NewRecorder()

	h.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "identity not found")
}

func TestIdentitiesDelete(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("alice", []byte("img")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	inv := &fakeInvalidator{}
	h := NewIdentitiesHandler(st, inv)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/identities/alice", nil)
	req = requestWithChiParams(req, map[string]string{"id": "alice"})
	recorder := httptest.NewRecorder()

	h.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	if st.Exists("alice") {
		t.Error("identity still exists after delete")
	}
	if inv.calls != 1 {
		t.Errorf("expected 1 Invalidate call, got %d", inv.calls)
	}
}

func TestIdentitiesDelete_NotFound(t *testing.T) {
	inv := &fakeInvalidator{}
	h := NewIdentitiesHandler(newTestStore(t), inv)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/identities/ghost", nil)
	req = requestWithChiParams(req, map[string]string{"id": "ghost"})
	recorder := httptest.NewRecorder()

	h.Delete(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
	if inv.calls != 0 {
		t.Error("index must not be invalidated when nothing was deleted")
	}
}
