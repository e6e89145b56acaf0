package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tutor-registry/internal/domain/registry"
	serviceInterfaces "tutor-registry/internal/interfaces/service"
	"tutor-registry/pkg/logger"
	"tutor-registry/pkg/validator"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the wire shape of every failure payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RegistryHandler handles the enrolment registry HTTP surface
type RegistryHandler struct {
	service serviceInterfaces.RegistryService
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(service serviceInterfaces.RegistryService) *RegistryHandler {
	return &RegistryHandler{service: service}
}

// clientMessages maps business rule violations to their canonical
// client-facing messages.
var clientMessages = map[error]string{
	registry.ErrInvalidSlot:         "Invalid subject_id and availability_id combination.",
	registry.ErrSlotFull:            "Subject slot has already been fulfilled for 8 students.",
	registry.ErrNameTaken:           "User with this name already exists.",
	registry.ErrAlreadyEnrolled:     "User has already enrolled in this subject slot.",
	registry.ErrUserNotFound:        "User not found.",
	registry.ErrSubjectNotFound:     "Subject not found.",
	registry.ErrUnknownAvailability: "One or more availability_ids do not exist.",
	registry.ErrNoUsers:             "No users in record",
	registry.ErrNoUsersMatchFilter:  "No users found with given filters.",
}

// respondError translates a workflow error into a status code and the
// {error: message} payload. Store failures stay generic; a failed
// compensation is reported as its own category of server error.
func respondError(c *gin.Context, err error) {
	for sentinel, message := range clientMessages {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
			return
		}
	}

	var rollbackErr *registry.RollbackError
	if errors.As(err, &rollbackErr) {
		logger.Error("Inconsistent state persisted: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Critical error: operation failed and rollback did not complete. Manual remediation required.",
		})
		return
	}

	logger.Error("Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
}

// GetUsers handles GET /users
func (h *RegistryHandler) GetUsers(c *gin.Context) {
	profiles, err := h.service.Roster(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// CreateUser handles POST /users
func (h *RegistryHandler) CreateUser(c *gin.Context) {
	var req registry.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Name, subject_id, and availability_id are required."})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Name, subject_id, and availability_id are required."})
		return
	}

	profile, err := h.service.CreateUserWithEnrolment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// CreateSubject handles POST /subjects
func (h *RegistryHandler) CreateSubject(c *gin.Context) {
	var req registry.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Name and availability_ids are required."})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Name and availability_ids are required."})
		return
	}

	subject, err := h.service.CreateSubjectWithOfferedSlots(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// Enrol handles POST /enrolment
func (h *RegistryHandler) Enrol(c *gin.Context) {
	var req registry.EnrolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id, subject_id, and availability_id are required."})
		return
	}
	if err := validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user_id, subject_id, and availability_id are required."})
		return
	}

	enrolment, err := h.service.EnrolExistingUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrolment)
}

// GetGroup handles GET /group
func (h *RegistryHandler) GetGroup(c *gin.Context) {
	var filter registry.GroupFilter

	if raw := c.Query("subject_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "subject_id must be an integer."})
			return
		}
		subjectID := uint(id)
		filter.SubjectID = &subjectID
	}
	if raw := c.Query("availability_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "availability_id must be an integer."})
			return
		}
		availabilityID := uint(id)
		filter.AvailabilityID = &availabilityID
	}

	summary, err := h.service.GroupedRoster(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteUser handles DELETE /users/:id
func (h *RegistryHandler) DeleteUser(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User ID is required"})
		return
	}

	response, err := h.service.DeleteUser(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetSubjects handles GET /subjects
func (h *RegistryHandler) GetSubjects(c *gin.Context) {
	subjects, err := h.service.ListSubjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// GetAvailabilities handles GET /availabilities
func (h *RegistryHandler) GetAvailabilities(c *gin.Context) {
	availabilities, err := h.service.ListAvailabilities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilities)
}
