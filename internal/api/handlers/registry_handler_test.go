package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"tutor-registry/internal/domain/registry"
	"tutor-registry/internal/infrastructure/cache"
	"tutor-registry/internal/infrastructure/repository"
	"tutor-registry/internal/service"
)

func newTestRouter(gateway *repository.MockGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewRegistryService(
		gateway.Users(),
		gateway.Subjects(),
		gateway.Availabilities(),
		gateway.Slots(),
		gateway.Enrolments(),
		cache.NewMemorySeatCache(),
		service.DefaultSlotCapacity,
	)
	handler := NewRegistryHandler(svc)

	router := gin.New()
	router.GET("/users", handler.GetUsers)
	router.POST("/users", handler.CreateUser)
	router.DELETE("/users/:id", handler.DeleteUser)
	router.GET("/subjects", handler.GetSubjects)
	router.POST("/subjects", handler.CreateSubject)
	router.GET("/availabilities", handler.GetAvailabilities)
	router.POST("/enrolment", handler.Enrol)
	router.GET("/group", handler.GetGroup)
	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var payload ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode error payload %q: %v", recorder.Body.String(), err)
	}
	return payload.Error
}

func TestCreateUserEndpoint(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	subject := gateway.SeedSubject("Math", 1)
	router := newTestRouter(gateway)

	body := fmt.Sprintf(`{"name":"Alice","subject_id":%d,"availability_id":1}`, subject.ID)
	recorder := performJSON(t, router, http.MethodPost, "/users", body)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var profile registry.UserProfile
	if err := json.Unmarshal(recorder.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if profile.Name != "Alice" {
		t.Errorf("Expected name Alice, got %s", profile.Name)
	}
	if len(profile.Enrolments) != 1 {
		t.Errorf("Expected 1 enrolment, got %d", len(profile.Enrolments))
	}
}

func TestCreateUserEndpoint_InvalidPair(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	gateway.SeedAvailability(2, "Tuesday")
	subject := gateway.SeedSubject("Math", 1)
	router := newTestRouter(gateway)

	body := fmt.Sprintf(`{"name":"Alice","subject_id":%d,"availability_id":2}`, subject.ID)
	recorder := performJSON(t, router, http.MethodPost, "/users", body)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "Invalid subject_id and availability_id combination." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestCreateUserEndpoint_MissingFields(t *testing.T) {
	gateway := repository.NewMockGateway()
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodPost, "/users", `{"name":"Alice"}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "Name, subject_id, and availability_id are required." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestCreateUserEndpoint_SlotFull(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	subject := gateway.SeedSubject("Math", 1)
	router := newTestRouter(gateway)

	for i := 0; i < service.DefaultSlotCapacity; i++ {
		body := fmt.Sprintf(`{"name":"student-%d","subject_id":%d,"availability_id":1}`, i, subject.ID)
		if recorder := performJSON(t, router, http.MethodPost, "/users", body); recorder.Code != http.StatusCreated {
			t.Fatalf("Enrolment %d failed with %d: %s", i, recorder.Code, recorder.Body.String())
		}
	}

	body := fmt.Sprintf(`{"name":"latecomer","subject_id":%d,"availability_id":1}`, subject.ID)
	recorder := performJSON(t, router, http.MethodPost, "/users", body)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "Subject slot has already been fulfilled for 8 students." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestCreateUserEndpoint_RollbackFailure(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	subject := gateway.SeedSubject("Math", 1)
	gateway.CreateEnrolmentErr = errors.New("insert rejected")
	gateway.DeleteUserErr = errors.New("store unreachable")
	router := newTestRouter(gateway)

	body := fmt.Sprintf(`{"name":"Alice","subject_id":%d,"availability_id":1}`, subject.ID)
	recorder := performJSON(t, router, http.MethodPost, "/users", body)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "Critical error: operation failed and rollback did not complete. Manual remediation required." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestGetUsersEndpoint_Empty(t *testing.T) {
	gateway := repository.NewMockGateway()
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodGet, "/users", "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "No users in record" {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestCreateSubjectEndpoint(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	gateway.SeedAvailability(2, "Tuesday")
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodPost, "/subjects", `{"name":"Math","availability_ids":[1,2]}`)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var subject registry.Subject
	if err := json.Unmarshal(recorder.Body.Bytes(), &subject); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(subject.OfferedSlots) != 2 {
		t.Errorf("Expected 2 offered slots, got %d", len(subject.OfferedSlots))
	}
}

func TestCreateSubjectEndpoint_UnknownAvailability(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodPost, "/subjects", `{"name":"Math","availability_ids":[1,9]}`)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "One or more availability_ids do not exist." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestEnrolEndpoint_UnknownUser(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	subject := gateway.SeedSubject("Math", 1)
	router := newTestRouter(gateway)

	body := fmt.Sprintf(`{"user_id":42,"subject_id":%d,"availability_id":1}`, subject.ID)
	recorder := performJSON(t, router, http.MethodPost, "/enrolment", body)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "User not found." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestGetGroupEndpoint_NoMatches(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	subject := gateway.SeedSubject("Math", 1)
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodGet, fmt.Sprintf("/group?subject_id=%d", subject.ID), "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "No users found with given filters." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestGetGroupEndpoint_BadQuery(t *testing.T) {
	gateway := repository.NewMockGateway()
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodGet, "/group?subject_id=abc", "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "subject_id must be an integer." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestDeleteUserEndpoint(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	subject := gateway.SeedSubject("Math", 1)
	router := newTestRouter(gateway)

	body := fmt.Sprintf(`{"name":"Alice","subject_id":%d,"availability_id":1}`, subject.ID)
	recorder := performJSON(t, router, http.MethodPost, "/users", body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Setup failed with %d: %s", recorder.Code, recorder.Body.String())
	}
	var profile registry.UserProfile
	if err := json.Unmarshal(recorder.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	recorder = performJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", profile.ID), "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response registry.DeleteUserResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Message != "User deleted successfully" {
		t.Errorf("Unexpected message: %s", response.Message)
	}
	if response.DeletedUser == nil || response.DeletedUser.Name != "Alice" {
		t.Errorf("Expected deleted user Alice, got %+v", response.DeletedUser)
	}
	if gateway.EnrolmentCount() != 0 {
		t.Errorf("Expected cascade to remove enrolments, found %d", gateway.EnrolmentCount())
	}
}

func TestDeleteUserEndpoint_NotFound(t *testing.T) {
	gateway := repository.NewMockGateway()
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodDelete, "/users/42", "")

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", recorder.Code)
	}
	if message := decodeError(t, recorder); message != "User not found." {
		t.Errorf("Unexpected error message: %s", message)
	}
}

func TestGetAvailabilitiesEndpoint(t *testing.T) {
	gateway := repository.NewMockGateway()
	gateway.SeedAvailability(1, "Monday")
	gateway.SeedAvailability(2, "Tuesday")
	router := newTestRouter(gateway)

	recorder := performJSON(t, router, http.MethodGet, "/availabilities", "")

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}
	var availabilities []registry.Availability
	if err := json.Unmarshal(recorder.Body.Bytes(), &availabilities); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(availabilities) != 2 {
		t.Errorf("Expected 2 availabilities, got %d", len(availabilities))
	}
}
