package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CreateCourseInput is a validated course creation request.
type CreateCourseInput struct {
	Title         string
	Description   string
	Duration      int
	Price         float64
	TrainerID     primitive.ObjectID
	Schedule      []domain.ScheduleEntry
	Materials     []domain.Material
	Category      string
	Prerequisites []string
	Objectives    []string
}

// --- Service Interface ---
type CourseService interface {
	Create(ctx context.Context, actor Actor, in CreateCourseInput) (*domain.Course, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.CourseView, error)
	List(ctx context.Context, filter domain.CourseFilter) ([]domain.CourseView, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch domain.CoursePatch) (*domain.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateMaterials(ctx context.Context, actor Actor, id primitive.ObjectID, materials []domain.Material) ([]domain.Material, error)
	UpdateSchedule(ctx context.Context, actor Actor, id primitive.ObjectID, schedule []domain.ScheduleEntry) ([]domain.ScheduleEntry, error)
}

// --- Service Implementation ---

type courseService struct {
	courseRepo  repository.CourseRepository
	trainerRepo repository.TrainerRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger
}

// NewCourseService creates a new instance of courseService.
func NewCourseService(
	courseRepo repository.CourseRepository,
	trainerRepo repository.TrainerRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) CourseService {
	return &courseService{
		courseRepo:  courseRepo,
		trainerRepo: trainerRepo,
		userRepo:    userRepo,
		logger:      logger.Named("courses"),
	}
}

// Create persists a course for an existing trainer.
func (s *courseService) Create(ctx context.Context, actor Actor, in CreateCourseInput) (*domain.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = sanitizeText(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, validationError("title and description are required")
	}
	if err := validateMaterials(in.Materials); err != nil {
		return nil, err
	}

	trainer, err := s.trainerRepo.GetByID(ctx, in.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	if err := checkCourseOwner(actor, trainer); err != nil {
		return nil, err
	}

	course := &domain.Course{
		Title:         in.Title,
		Description:   in.Description,
		Duration:      in.Duration,
		Price:         in.Price,
		TrainerID:     trainer.ID,
		Schedule:      in.Schedule,
		Materials:     in.Materials,
		Status:        domain.CourseDraft,
		Category:      strings.TrimSpace(in.Category),
		Prerequisites: in.Prerequisites,
		Objectives:    in.Objectives,
	}
	course.Normalize()

	if _, err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	s.logger.Info("course created", zap.String("courseId", course.ID.Hex()), zap.String("trainerId", trainer.ID.Hex()))
	return course, nil
}

func (s *courseService) Get(ctx context.Context, id primitive.ObjectID) (*domain.CourseView, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.join(ctx, []domain.Course{*course})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns the matching courses joined with their trainers.
func (s *courseService) List(ctx context.Context, filter domain.CourseFilter) ([]domain.CourseView, error) {
	courses, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, courses)
}

// Update applies patch. Status moves freely between draft, published and completed.
func (s *courseService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch domain.CoursePatch) (*domain.Course, error) {
	course, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	patch.Description = sanitizePtr(patch.Description)
	if patch.Materials != nil {
		if err := validateMaterials(*patch.Materials); err != nil {
			return nil, err
		}
	}

	updated := patch.Apply(*course)
	updated.Normalize()

	if err := s.courseRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (s *courseService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	s.logger.Info("course deleted", zap.String("courseId", id.Hex()))
	return nil
}

func (s *courseService) UpdateMaterials(ctx context.Context, actor Actor, id primitive.ObjectID, materials []domain.Material) ([]domain.Material, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := validateMaterials(materials); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.SetMaterials(ctx, id, materials)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course.Materials, nil
}

// UpdateSchedule replaces the schedule. Overlapping entries are accepted.
func (s *courseService) UpdateSchedule(ctx context.Context, actor Actor, id primitive.ObjectID, schedule []domain.ScheduleEntry) ([]domain.ScheduleEntry, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	for i := range schedule {
		if schedule[i].Duration < 0 {
			schedule[i].Duration = 0
		}
	}

	course, err := s.courseRepo.SetSchedule(ctx, id, schedule)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course.Schedule, nil
}

// --- Helpers ---

func (s *courseService) load(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// loadOwned loads the course and checks a trainer-role actor teaches it.
func (s *courseService) loadOwned(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Course, error) {
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleTrainer {
		return course, nil
	}

	trainer, err := s.trainerRepo.GetByID(ctx, course.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Orphaned course: only admins may touch it.
			return nil, ErrForbidden
		}
		return nil, err
	}
	if err := checkCourseOwner(actor, trainer); err != nil {
		return nil, err
	}
	return course, nil
}

// join attaches the trainer summary, and the trainer's user identity, to each course.
func (s *courseService) join(ctx context.Context, courses []domain.Course) ([]domain.CourseView, error) {
	trainerIDs := make([]primitive.ObjectID, 0, len(courses))
	for _, c := range courses {
		trainerIDs = append(trainerIDs, c.TrainerID)
	}
	trainers, err := s.trainerRepo.GetByIDs(ctx, trainerIDs)
	if err != nil {
		return nil, err
	}

	userIDs := make([]primitive.ObjectID, 0, len(trainers))
	for _, t := range trainers {
		userIDs = append(userIDs, t.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}

	summaries := make(map[primitive.ObjectID]*domain.TrainerSummary, len(trainers))
	for _, t := range trainers {
		summaries[t.ID] = &domain.TrainerSummary{
			ID:         t.ID,
			UserID:     t.UserID,
			Name:       t.Name,
			Skills:     t.Skills,
			Experience: t.Experience,
			User:       domain.SummarizeUser(usersByID[t.UserID]),
		}
	}

	views := make([]domain.CourseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, domain.CourseView{Course: c, Trainer: summaries[c.TrainerID]})
	}
	return views, nil
}

func checkCourseOwner(actor Actor, trainer *domain.Trainer) error {
	if actor.Role == domain.RoleTrainer && trainer.UserID != actor.UserID {
		return ErrForbidden
	}
	return nil
}

func validateMaterials(materials []domain.Material) error {
	for i, m := range materials {
		if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.URL) == "" {
			return validationError("materials[%d]: title and url are required", i)
		}
	}
	return nil
}
