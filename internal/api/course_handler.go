package api

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CourseHandler struct {
	courseService service.CourseService
	logger        *zap.Logger
}

func NewCourseHandler(courseService service.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, logger: logger}
}

// --- DTOs ---

type ScheduleRequest struct {
	Date     string `json:"date" binding:"required,isodate"`
	Time     string `json:"time" binding:"required,clock"`
	Duration *int   `json:"duration" binding:"required,min=0"`
}

type MaterialRequest struct {
	Title string `json:"title" binding:"required"`
	URL   string `json:"url" binding:"required,url"`
}

type CreateCourseRequest struct {
	Title         string            `json:"title" binding:"required"`
	Description   string            `json:"description" binding:"required"`
	Duration      *int              `json:"duration" binding:"required,min=0"`
	Price         *float64          `json:"price" binding:"required,min=0"`
	TrainerID     string            `json:"trainerId" binding:"required,mongodb"`
	Category      string            `json:"category" binding:"required"`
	Schedule      []ScheduleRequest `json:"schedule" binding:"omitempty,dive"`
	Materials     []MaterialRequest `json:"materials" binding:"omitempty,dive"`
	Prerequisites []string          `json:"prerequisites" binding:"required"`
	Objectives    []string          `json:"objectives" binding:"required"`
}

// UpdateCourseRequest only changes fields that carry a non-empty value.
type UpdateCourseRequest struct {
	Title         *string           `json:"title"`
	Description   *string           `json:"description"`
	Duration      *int              `json:"duration" binding:"omitempty,min=0"`
	Price         *float64          `json:"price" binding:"omitempty,min=0"`
	Category      *string           `json:"category"`
	Status        *string           `json:"status" binding:"omitempty,oneof=draft published completed"`
	Schedule      []ScheduleRequest `json:"schedule" binding:"omitempty,dive"`
	Materials     []MaterialRequest `json:"materials" binding:"omitempty,dive"`
	Prerequisites []string          `json:"prerequisites"`
	Objectives    []string          `json:"objectives"`
}

type UpdateMaterialsRequest struct {
	Materials []MaterialRequest `json:"materials" binding:"required,dive"`
}

type UpdateScheduleRequest struct {
	Schedule []ScheduleRequest `json:"schedule" binding:"required,dive"`
}

type CourseMessageResponse struct {
	Message string         `json:"message"`
	Course  *domain.Course `json:"course"`
}

type MaterialsResponse struct {
	Message   string            `json:"message"`
	Materials []domain.Material `json:"materials"`
}

type ScheduleResponse struct {
	Message  string                 `json:"message"`
	Schedule []domain.ScheduleEntry `json:"schedule"`
}

// --- Handler Methods ---

// CreateCourse godoc
// @Summary Create a course
// @Description Trainers may only create courses for their own profile.
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body CreateCourseRequest true "Course details"
// @Success 201 {object} domain.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Trainer not found"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	trainerID, _ := primitive.ObjectIDFromHex(req.TrainerID)

	course, err := h.courseService.Create(c.Request.Context(), actor, service.CreateCourseInput{
		Title:         req.Title,
		Description:   req.Description,
		Duration:      *req.Duration,
		Price:         *req.Price,
		TrainerID:     trainerID,
		Schedule:      toSchedule(req.Schedule),
		Materials:     toMaterials(req.Materials),
		Category:      req.Category,
		Prerequisites: req.Prerequisites,
		Objectives:    req.Objectives,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// ListCourses godoc
// @Summary List courses with their trainers
// @Tags Courses
// @Produce json
// @Param category query string false "Exact category"
// @Param status query string false "draft, published or completed"
// @Param trainerId query string false "Trainer ID"
// @Param q query string false "Text search over title and description"
// @Success 200 {array} domain.CourseView
// @Failure 400 {object} ErrorResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filter := domain.CourseFilter{
		Category: c.Query("category"),
		Status:   domain.CourseStatus(c.Query("status")),
		Query:    c.Query("q"),
	}
	if raw := c.Query("trainerId"); raw != "" {
		trainerID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Message:   "Validation failed",
				Errors:    []FieldError{{Field: "trainerId", Rule: "mongodb", Message: validationMessage("mongodb", "")}},
				RequestID: requestIDFrom(c),
			})
			return
		}
		filter.TrainerID = &trainerID
	}

	courses, err := h.courseService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse godoc
// @Summary Get a course with its trainer
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} domain.CourseView
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Empty strings and zero numbers leave the stored value unchanged. Status moves freely.
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param course body UpdateCourseRequest true "Fields to change"
// @Success 200 {object} CourseMessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}
	var req UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	patch := domain.CoursePatch{
		Title:         domain.Truthy(req.Title),
		Description:   domain.Truthy(req.Description),
		Duration:      domain.Truthy(req.Duration),
		Price:         domain.Truthy(req.Price),
		Category:      domain.Truthy(req.Category),
		Schedule:      domain.TruthySlice(toSchedule(req.Schedule)),
		Materials:     domain.TruthySlice(toMaterials(req.Materials)),
		Prerequisites: domain.TruthySlice(req.Prerequisites),
		Objectives:    domain.TruthySlice(req.Objectives),
	}
	if status := domain.Truthy(req.Status); status != nil {
		s := domain.CourseStatus(*status)
		patch.Status = &s
	}

	course, err := h.courseService.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CourseMessageResponse{Message: "Course updated successfully", Course: course})
}

// DeleteCourse godoc
// @Summary Delete a course (admin)
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Course deleted successfully"})
}

// UpdateMaterials godoc
// @Summary Replace a course's materials
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param materials body UpdateMaterialsRequest true "New materials"
// @Success 200 {object} MaterialsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/materials [put]
func (h *CourseHandler) UpdateMaterials(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}
	var req UpdateMaterialsRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	materials, err := h.courseService.UpdateMaterials(c.Request.Context(), actor, id, toMaterials(req.Materials))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MaterialsResponse{Message: "Materials updated successfully", Materials: materials})
}

// UpdateSchedule godoc
// @Summary Replace a course's schedule
// @Description No overlap checks are made between entries.
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param schedule body UpdateScheduleRequest true "New schedule"
// @Success 200 {object} ScheduleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/schedule [put]
func (h *CourseHandler) UpdateSchedule(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}
	var req UpdateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	schedule, err := h.courseService.UpdateSchedule(c.Request.Context(), actor, id, toSchedule(req.Schedule))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Message: "Schedule updated successfully", Schedule: schedule})
}

func (h *CourseHandler) courseID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, service.ErrCourseNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// toSchedule converts validated entries; dates were checked by the isodate rule.
func toSchedule(in []ScheduleRequest) []domain.ScheduleEntry {
	if in == nil {
		return nil
	}
	out := make([]domain.ScheduleEntry, 0, len(in))
	for _, s := range in {
		date, _ := parseISODate(s.Date)
		out = append(out, domain.ScheduleEntry{Date: date.UTC(), Time: s.Time, Duration: *s.Duration})
	}
	return out
}

func toMaterials(in []MaterialRequest) []domain.Material {
	if in == nil {
		return nil
	}
	out := make([]domain.Material, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Material{Title: m.Title, URL: m.URL})
	}
	return out
}
