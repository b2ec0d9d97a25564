package phorest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateBookingSuccess(t *testing.T) {
	var gotPath string
	var gotBody CreateBookingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("Authorization") != "Bearer key-1" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(CreateBookingResponse{Success: true, AppointmentID: "appt-9"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", nil)
	resp, err := client.CreateBooking(context.Background(), CreateBookingRequest{
		BranchID:   "branch-1",
		ClientID:   "cl-1",
		StaffID:    "st-1",
		ServiceIDs: []string{"svc1"},
		StartTime:  "2024-03-01T10:00:00Z",
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if gotPath != "/create-booking" {
		t.Errorf("path = %q, want /create-booking", gotPath)
	}
	if resp.AppointmentID != "appt-9" {
		t.Errorf("AppointmentID = %q, want appt-9", resp.AppointmentID)
	}
	if len(gotBody.ServiceIDs) != 1 || gotBody.ServiceIDs[0] != "svc1" {
		t.Errorf("service_ids = %v, want [svc1]", gotBody.ServiceIDs)
	}
}

func TestCreateBookingBackendErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(CreateBookingResponse{
			Success: false,
			Error:   "Stylist is already booked at 10:00",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", nil)
	_, err := client.CreateBooking(context.Background(), CreateBookingRequest{})
	if err == nil {
		t.Fatal("expected backend error")
	}

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if backendErr.Message != "Stylist is already booked at 10:00" {
		t.Errorf("message = %q, want backend text verbatim", backendErr.Message)
	}
}

func TestCreateBookingNon200WithEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "duplicate client"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", nil)
	_, err := client.CreateClient(context.Background(), CreateClientRequest{FirstName: "Ann"})
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("error type = %T, want *BackendError", err)
	}
	if backendErr.Message != "duplicate client" {
		t.Errorf("message = %q, want 'duplicate client'", backendErr.Message)
	}
}

func TestExpandRecurrencePartialSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RecurringRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RecurrenceRule.Frequency != "every_4_weeks" {
			t.Errorf("frequency = %q", req.RecurrenceRule.Frequency)
		}
		_ = json.NewEncoder(w).Encode(RecurringResponse{
			Success:        true,
			CreatedCount:   4,
			SkippedCount:   1,
			TotalRequested: 5,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", nil)
	resp, err := client.ExpandRecurrence(context.Background(), RecurringRequest{
		FirstAppointmentID: "appt-9",
		RecurrenceRule:     RecurrenceRule{Frequency: "every_4_weeks", Occurrences: 6},
	})
	if err != nil {
		t.Fatalf("ExpandRecurrence failed: %v", err)
	}
	if resp.CreatedCount != 4 || resp.SkippedCount != 1 {
		t.Errorf("counts = %d created, %d skipped; want 4 and 1", resp.CreatedCount, resp.SkippedCount)
	}
}

func TestRequestBreak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req BreakRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.IsFullDay && (req.StartTime == "" || req.EndTime == "") {
			t.Error("partial-day break must carry explicit times")
		}
		_ = json.NewEncoder(w).Encode(BreakResponse{Success: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", nil)
	_, err := client.RequestBreak(context.Background(), BreakRequest{
		UserID:         "u-1",
		OrganizationID: "org-1",
		StartDate:      "2024-03-04",
		EndDate:        "2024-03-04",
		StartTime:      "13:00",
		EndTime:        "15:00",
		Reason:         "training",
	})
	if err != nil {
		t.Fatalf("RequestBreak failed: %v", err)
	}
}

func TestMissingBaseURL(t *testing.T) {
	client := NewClient("", "", nil)
	_, err := client.CreateBooking(context.Background(), CreateBookingRequest{})
	if err == nil {
		t.Fatal("expected error for missing base URL")
	}
}
