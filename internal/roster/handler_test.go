package roster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeRoster struct {
	locations        []Location
	stylistLocations map[string][]Location
	staff            []StaffMapping
	branchStaff      map[string][]StaffMapping
}

func (f *fakeRoster) Locations(_ context.Context) ([]Location, error) {
	return f.locations, nil
}

func (f *fakeRoster) LocationsForStylist(_ context.Context, userID string) ([]Location, error) {
	return f.stylistLocations[userID], nil
}

func (f *fakeRoster) AllStaff(_ context.Context) ([]StaffMapping, error) {
	return f.staff, nil
}

func (f *fakeRoster) StaffForLocation(_ context.Context, branchID string) ([]StaffMapping, error) {
	return f.branchStaff[branchID], nil
}

func TestListLocationsAll(t *testing.T) {
	h := NewHandler(&fakeRoster{locations: []Location{
		{ID: "loc-1", PhorestBranchID: "branch-1", Name: "Downtown"},
		{ID: "loc-2", PhorestBranchID: "branch-2", Name: "Riverside"},
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rec := httptest.NewRecorder()
	h.ListLocations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Locations []Location `json:"locations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Locations) != 2 {
		t.Errorf("locations = %v, want both branches", body.Locations)
	}
}

func TestListLocationsForStylist(t *testing.T) {
	h := NewHandler(&fakeRoster{
		locations: []Location{{ID: "loc-1"}, {ID: "loc-2"}},
		stylistLocations: map[string][]Location{
			"u-riley": {{ID: "loc-2", PhorestBranchID: "branch-2", Name: "Riverside"}},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/locations?stylist_id=u-riley", nil)
	rec := httptest.NewRecorder()
	h.ListLocations(rec, req)

	var body struct {
		Locations []Location `json:"locations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Locations) != 1 || body.Locations[0].ID != "loc-2" {
		t.Errorf("locations = %v, want the stylist's branch only", body.Locations)
	}
}

func TestListLocationsEmptyIsNotNull(t *testing.T) {
	h := NewHandler(&fakeRoster{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/locations?stylist_id=u-ghost", nil)
	rec := httptest.NewRecorder()
	h.ListLocations(rec, req)

	if got := rec.Body.String(); got != "{\"locations\":[]}\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestListStaffForLocation(t *testing.T) {
	h := NewHandler(&fakeRoster{
		staff: []StaffMapping{{UserID: "u-riley"}, {UserID: "u-dana"}},
		branchStaff: map[string][]StaffMapping{
			"branch-1": {{UserID: "u-riley", PhorestBranchID: "branch-1", DisplayName: "Riley Fox"}},
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/staff?location=branch-1", nil)
	rec := httptest.NewRecorder()
	h.ListStaff(rec, req)

	var body struct {
		Staff []StaffMapping `json:"staff"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Staff) != 1 || body.Staff[0].UserID != "u-riley" {
		t.Errorf("staff = %v, want branch-1 roster", body.Staff)
	}
}

func TestListStaffAll(t *testing.T) {
	h := NewHandler(&fakeRoster{staff: []StaffMapping{{UserID: "u-riley"}, {UserID: "u-dana"}}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	rec := httptest.NewRecorder()
	h.ListStaff(rec, req)

	var body struct {
		Staff []StaffMapping `json:"staff"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Staff) != 2 {
		t.Errorf("staff = %v, want full roster", body.Staff)
	}
}
