package api

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type TrainerHandler struct {
	trainerService service.TrainerService
	tokens         *service.TokenService
	authService    service.AuthService
	logger         *zap.Logger
}

func NewTrainerHandler(
	trainerService service.TrainerService,
	tokens *service.TokenService,
	authService service.AuthService,
	logger *zap.Logger,
) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		tokens:         tokens,
		authService:    authService,
		logger:         logger,
	}
}

// --- DTOs ---

// OnboardRequest is the open multipart questionnaire. The resume travels as the "resume" file part.
// Numeric answers are pointers so an explicit 0 still counts as answered.
type OnboardRequest struct {
	Name                  string   `form:"name" binding:"required"`
	Email                 string   `form:"email" binding:"required,email"`
	PhoneNo               string   `form:"phoneNo" binding:"required"`
	Qualification         string   `form:"qualification" binding:"required"`
	PassingYear           *int     `form:"passingYear" binding:"required"`
	Expertise             string   `form:"expertise" binding:"required"`
	TeachingExperience    *float64 `form:"teachingExperience" binding:"required"`
	DevelopmentExperience *float64 `form:"developmentExperience" binding:"required"`
	TotalExperience       *float64 `form:"totalExperience" binding:"required"`
	FeasibleTime          string   `form:"feasibleTime" binding:"required"`
	PayoutExpectation     *float64 `form:"payoutExpectation" binding:"required"`
	Location              string   `form:"location" binding:"required"`
	Remarks               string   `form:"remarks" binding:"required,max=500"`
}

type AvailabilityRequest struct {
	Day   string   `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Slots []string `json:"slots" binding:"required"`
}

type DocumentRequest struct {
	Type string `json:"type" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
}

// CreateProfileRequest attaches a marketplace profile to an existing trainer user.
type CreateProfileRequest struct {
	UserID       string                `json:"userId" binding:"required,mongodb"`
	Skills       []string              `json:"skills" binding:"required"`
	Experience   *float64              `json:"experience" binding:"required,min=0"`
	Bio          string                `json:"bio" binding:"required,min=50,max=500"`
	HourlyRate   *float64              `json:"hourlyRate" binding:"required,min=0"`
	Availability []AvailabilityRequest `json:"availability" binding:"required,dive"`
}

// UpdateTrainerRequest only changes fields that carry a non-empty value.
type UpdateTrainerRequest struct {
	Name                  *string               `json:"name"`
	PhoneNo               *string               `json:"phoneNo"`
	Qualification         *string               `json:"qualification"`
	PassingYear           *int                  `json:"passingYear"`
	Expertise             *string               `json:"expertise"`
	TeachingExperience    *float64              `json:"teachingExperience"`
	DevelopmentExperience *float64              `json:"developmentExperience"`
	TotalExperience       *float64              `json:"totalExperience"`
	FeasibleTime          *string               `json:"feasibleTime"`
	PayoutExpectation     *float64              `json:"payoutExpectation"`
	Location              *string               `json:"location"`
	Remarks               *string               `json:"remarks"`
	Skills                []string              `json:"skills"`
	Experience            *float64              `json:"experience"`
	Bio                   *string               `json:"bio"`
	HourlyRate            *float64              `json:"hourlyRate"`
	Availability          []AvailabilityRequest `json:"availability" binding:"omitempty,dive"`
	Status                *string               `json:"status" binding:"omitempty,oneof=active inactive"`
	Presence              *string               `json:"presence" binding:"omitempty,oneof=available busy offline"`
}

type UpdateAvailabilityRequest struct {
	Availability []AvailabilityRequest `json:"availability" binding:"required,dive"`
}

type UpdateDocumentsRequest struct {
	Documents []DocumentRequest `json:"documents" binding:"required,dive"`
}

type TrainerMessageResponse struct {
	Message string          `json:"message"`
	Trainer *domain.Trainer `json:"trainer"`
}

type AvailabilityResponse struct {
	Message      string                    `json:"message"`
	Availability []domain.AvailabilitySlot `json:"availability"`
}

type DocumentsResponse struct {
	Message   string                   `json:"message"`
	Documents []domain.TrainerDocument `json:"documents"`
}

// --- Handler Methods ---

// CreateTrainer godoc
// @Summary Create a trainer
// @Description multipart/form-data runs the open onboarding flow (optional "resume" file).
// @Description application/json creates a profile for an existing trainer user and requires an admin token.
// @Tags Trainers
// @Accept multipart/form-data,json
// @Produce json
// @Success 201 {object} domain.Trainer
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /trainers [post]
func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		h.onboard(c)
		return
	}
	h.createProfile(c)
}

func (h *TrainerHandler) onboard(c *gin.Context) {
	var req OnboardRequest
	if !bindMultipart(c, &req) {
		return
	}

	var resume *service.ResumeUpload
	fileHeader, err := c.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		abortWithError(c, http.StatusBadRequest, "Invalid resume upload")
		return
	default:
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer file.Close()
		resume = &service.ResumeUpload{Filename: fileHeader.Filename, Size: fileHeader.Size, Content: file}
	}

	trainer, err := h.trainerService.Onboard(c.Request.Context(), service.OnboardInput{
		Name:                  req.Name,
		Email:                 req.Email,
		PhoneNo:               req.PhoneNo,
		Qualification:         req.Qualification,
		PassingYear:           *req.PassingYear,
		Expertise:             req.Expertise,
		TeachingExperience:    *req.TeachingExperience,
		DevelopmentExperience: *req.DevelopmentExperience,
		TotalExperience:       *req.TotalExperience,
		FeasibleTime:          req.FeasibleTime,
		PayoutExpectation:     *req.PayoutExpectation,
		Location:              req.Location,
		Remarks:               req.Remarks,
	}, resume)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

func (h *TrainerHandler) createProfile(c *gin.Context) {
	// The route is public for onboarding, so the gate runs here.
	user, err := authenticate(c, h.tokens, h.authService)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	setCaller(c, user)
	if err := service.Authorize(user.Role, service.OpTrainerCreate); err != nil {
		abortWithError(c, http.StatusForbidden, msgForbidden)
		return
	}

	var req CreateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, _ := primitive.ObjectIDFromHex(req.UserID)

	trainer, err := h.trainerService.CreateProfile(c.Request.Context(), service.CreateProfileInput{
		UserID:       userID,
		Skills:       req.Skills,
		Experience:   *req.Experience,
		Bio:          req.Bio,
		HourlyRate:   *req.HourlyRate,
		Availability: toAvailability(req.Availability),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

// ListTrainers godoc
// @Summary List trainers
// @Tags Trainers
// @Produce json
// @Param location query string false "Exact location"
// @Param expertise query string false "Exact expertise"
// @Param status query string false "active or inactive"
// @Success 200 {array} domain.TrainerView
// @Router /trainers [get]
func (h *TrainerHandler) ListTrainers(c *gin.Context) {
	filter := domain.TrainerFilter{
		Location:  c.Query("location"),
		Expertise: c.Query("expertise"),
		Status:    domain.TrainerStatus(c.Query("status")),
	}
	trainers, err := h.trainerService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trainers)
}

// GetTrainer godoc
// @Summary Get a trainer with its user
// @Tags Trainers
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 200 {object} domain.TrainerView
// @Failure 404 {object} ErrorResponse
// @Router /trainers/{id} [get]
func (h *TrainerHandler) GetTrainer(c *gin.Context) {
	id, ok := h.trainerID(c)
	if !ok {
		return
	}
	trainer, err := h.trainerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trainer)
}

// UpdateTrainer godoc
// @Summary Update a trainer
// @Description Empty strings and zero numbers leave the stored value unchanged.
// @Tags Trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param trainer body UpdateTrainerRequest true "Fields to change"
// @Success 200 {object} TrainerMessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse
// @Router /trainers/{id} [put]
func (h *TrainerHandler) UpdateTrainer(c *gin.Context) {
	id, ok := h.trainerID(c)
	if !ok {
		return
	}
	var req UpdateTrainerRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	patch := domain.TrainerPatch{
		Name:                  domain.Truthy(req.Name),
		PhoneNo:               domain.Truthy(req.PhoneNo),
		Qualification:         domain.Truthy(req.Qualification),
		PassingYear:           domain.Truthy(req.PassingYear),
		Expertise:             domain.Truthy(req.Expertise),
		TeachingExperience:    domain.Truthy(req.TeachingExperience),
		DevelopmentExperience: domain.Truthy(req.DevelopmentExperience),
		TotalExperience:       domain.Truthy(req.TotalExperience),
		FeasibleTime:          domain.Truthy(req.FeasibleTime),
		PayoutExpectation:     domain.Truthy(req.PayoutExpectation),
		Location:              domain.Truthy(req.Location),
		Remarks:               domain.Truthy(req.Remarks),
		Skills:                domain.TruthySlice(req.Skills),
		Experience:            domain.Truthy(req.Experience),
		Bio:                   domain.Truthy(req.Bio),
		HourlyRate:            domain.Truthy(req.HourlyRate),
		Availability:          domain.TruthySlice(toAvailability(req.Availability)),
	}
	if status := domain.Truthy(req.Status); status != nil {
		s := domain.TrainerStatus(*status)
		patch.Status = &s
	}
	if presence := domain.Truthy(req.Presence); presence != nil {
		p := domain.Presence(*presence)
		patch.Presence = &p
	}

	trainer, err := h.trainerService.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, TrainerMessageResponse{Message: "Trainer updated successfully", Trainer: trainer})
}

// DeleteTrainer godoc
// @Summary Delete a trainer (admin)
// @Tags Trainers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /trainers/{id} [delete]
func (h *TrainerHandler) DeleteTrainer(c *gin.Context) {
	id, ok := h.trainerID(c)
	if !ok {
		return
	}
	if err := h.trainerService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Trainer deleted successfully"})
}

// UpdateAvailability godoc
// @Summary Replace a trainer's weekly availability
// @Tags Trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param availability body UpdateAvailabilityRequest true "New availability"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /trainers/{id}/availability [put]
func (h *TrainerHandler) UpdateAvailability(c *gin.Context) {
	id, ok := h.trainerID(c)
	if !ok {
		return
	}
	var req UpdateAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	availability, err := h.trainerService.UpdateAvailability(c.Request.Context(), actor, id, toAvailability(req.Availability))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, AvailabilityResponse{Message: "Availability updated successfully", Availability: availability})
}

// UpdateDocuments godoc
// @Summary Replace a trainer's documents
// @Tags Trainers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trainer ID"
// @Param documents body UpdateDocumentsRequest true "New documents"
// @Success 200 {object} DocumentsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /trainers/{id}/documents [put]
func (h *TrainerHandler) UpdateDocuments(c *gin.Context) {
	id, ok := h.trainerID(c)
	if !ok {
		return
	}
	var req UpdateDocumentsRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	documents := make([]domain.TrainerDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		documents = append(documents, domain.TrainerDocument{Type: d.Type, URL: d.URL})
	}
	documents, err := h.trainerService.UpdateDocuments(c.Request.Context(), actor, id, documents)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, DocumentsResponse{Message: "Documents updated successfully", Documents: documents})
}

// trainerID parses the :id path parameter. Malformed ids are reported as not found.
func (h *TrainerHandler) trainerID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, service.ErrTrainerNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

func toAvailability(in []AvailabilityRequest) []domain.AvailabilitySlot {
	if in == nil {
		return nil
	}
	out := make([]domain.AvailabilitySlot, 0, len(in))
	for _, a := range in {
		out = append(out, domain.AvailabilitySlot{Day: a.Day, Slots: append([]string{}, a.Slots...)})
	}
	return out
}
