package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"alcyxob/trainer-marketplace/internal/storage"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	MaxRemarksLength = 500
	MinBioLength     = 50
	MaxBioLength     = 500
)

// OnboardInput is the open onboarding questionnaire.
type OnboardInput struct {
	Name                  string
	Email                 string
	PhoneNo               string
	Qualification         string
	PassingYear           int
	Expertise             string
	TeachingExperience    float64
	DevelopmentExperience float64
	TotalExperience       float64
	FeasibleTime          string
	PayoutExpectation     float64
	Location              string
	Remarks               string
}

// CreateProfileInput links a marketplace profile to an existing trainer user.
type CreateProfileInput struct {
	UserID       primitive.ObjectID
	Skills       []string
	Experience   float64
	Bio          string
	HourlyRate   float64
	Availability []domain.AvailabilitySlot
}

// TrainerSettings are the onboarding knobs taken from config.
type TrainerSettings struct {
	DefaultPassword string
	MaxResumeSize   int64
}

// --- Service Interface ---
type TrainerService interface {
	Onboard(ctx context.Context, in OnboardInput, resume *ResumeUpload) (*domain.Trainer, error)
	CreateProfile(ctx context.Context, in CreateProfileInput) (*domain.Trainer, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.TrainerView, error)
	List(ctx context.Context, filter domain.TrainerFilter) ([]domain.TrainerView, error)
	Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch domain.TrainerPatch) (*domain.Trainer, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateAvailability(ctx context.Context, actor Actor, id primitive.ObjectID, availability []domain.AvailabilitySlot) ([]domain.AvailabilitySlot, error)
	UpdateDocuments(ctx context.Context, actor Actor, id primitive.ObjectID, documents []domain.TrainerDocument) ([]domain.TrainerDocument, error)
}

// --- Service Implementation ---

type trainerService struct {
	userRepo    repository.UserRepository
	trainerRepo repository.TrainerRepository
	files       storage.FileStorage
	settings    TrainerSettings
	logger      *zap.Logger
	now         func() time.Time
}

// NewTrainerService creates a new instance of trainerService.
func NewTrainerService(
	userRepo repository.UserRepository,
	trainerRepo repository.TrainerRepository,
	files storage.FileStorage,
	settings TrainerSettings,
	logger *zap.Logger,
) TrainerService {
	return &trainerService{
		userRepo:    userRepo,
		trainerRepo: trainerRepo,
		files:       files,
		settings:    settings,
		logger:      logger.Named("trainers"),
		now:         time.Now,
	}
}

// Onboard registers a trainer from the open questionnaire. It creates the
// backing user with the default password and stores the optional resume.
func (s *trainerService) Onboard(ctx context.Context, in OnboardInput, resume *ResumeUpload) (_ *domain.Trainer, err error) {
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Remarks = sanitizeText(in.Remarks)
	if missing := missingOnboardFields(in); len(missing) > 0 {
		return nil, validationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if textLen(in.Remarks) > MaxRemarksLength {
		return nil, validationError("remarks must be at most %d characters", MaxRemarksLength)
	}

	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}

	var staged *stagedFile
	if resume != nil {
		staged, err = stageResume(ctx, s.files, s.logger, resume, s.settings.MaxResumeSize)
		if err != nil {
			return nil, err
		}
		defer staged.release(ctx)
	}

	hash, err := hashPassword(s.settings.DefaultPassword)
	if err != nil {
		return nil, err
	}
	first, last := splitName(in.Name)
	user := &domain.User{
		FirstName:    first,
		LastName:     last,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleTrainer,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	trainer := &domain.Trainer{
		UserID:                user.ID,
		Name:                  in.Name,
		Email:                 in.Email,
		PhoneNo:               strings.TrimSpace(in.PhoneNo),
		Qualification:         strings.TrimSpace(in.Qualification),
		PassingYear:           in.PassingYear,
		Expertise:             strings.TrimSpace(in.Expertise),
		TeachingExperience:    in.TeachingExperience,
		DevelopmentExperience: in.DevelopmentExperience,
		TotalExperience:       in.TotalExperience,
		FeasibleTime:          strings.TrimSpace(in.FeasibleTime),
		PayoutExpectation:     in.PayoutExpectation,
		Location:              strings.TrimSpace(in.Location),
		Remarks:               in.Remarks,
		Status:                domain.TrainerActive,
	}
	if staged != nil {
		trainer.Resume = staged.key
	}
	trainer.Normalize(s.now())

	if _, err := s.trainerRepo.Create(ctx, trainer); err != nil {
		s.removeUser(ctx, user.ID)
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	staged.commit()
	s.logger.Info("trainer onboarded",
		zap.String("trainerId", trainer.ID.Hex()),
		zap.Bool("resume", trainer.Resume != ""))
	return trainer, nil
}

// CreateProfile attaches a profile to an existing user with the trainer role.
func (s *trainerService) CreateProfile(ctx context.Context, in CreateProfileInput) (*domain.Trainer, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsTrainer() {
		return nil, validationError("user is not a trainer")
	}

	bio := sanitizeText(in.Bio)
	if n := textLen(bio); n < MinBioLength || n > MaxBioLength {
		return nil, validationError("bio must be between %d and %d characters", MinBioLength, MaxBioLength)
	}
	if err := validateAvailability(in.Availability); err != nil {
		return nil, err
	}

	_, err = s.trainerRepo.GetByUserID(ctx, user.ID)
	if err == nil {
		return nil, ErrTrainerExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	trainer := &domain.Trainer{
		UserID:       user.ID,
		Name:         user.FullName(),
		Email:        user.Email,
		Skills:       in.Skills,
		Experience:   in.Experience,
		Bio:          bio,
		HourlyRate:   in.HourlyRate,
		Availability: in.Availability,
	}
	trainer.Normalize(s.now())

	if _, err := s.trainerRepo.Create(ctx, trainer); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrTrainerExists
		}
		return nil, err
	}
	s.logger.Info("trainer profile created", zap.String("trainerId", trainer.ID.Hex()), zap.String("userId", user.ID.Hex()))
	return trainer, nil
}

func (s *trainerService) Get(ctx context.Context, id primitive.ObjectID) (*domain.TrainerView, error) {
	trainer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	view := domain.TrainerView{Trainer: *trainer}
	user, err := s.userRepo.GetByID(ctx, trainer.UserID)
	switch {
	case err == nil:
		view.User = domain.SummarizeUser(user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if trainer.Resume != "" {
		url, err := s.files.URL(ctx, trainer.Resume)
		if err != nil {
			s.logger.Warn("failed to resolve resume url", zap.String("key", trainer.Resume), zap.Error(err))
		}
		view.ResumeURL = url
	}
	return &view, nil
}

// List returns the matching trainers joined with their user identity.
func (s *trainerService) List(ctx context.Context, filter domain.TrainerFilter) ([]domain.TrainerView, error) {
	trainers, err := s.trainerRepo.List(ctx, filter)
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
	byID := make(map[primitive.ObjectID]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	views := make([]domain.TrainerView, 0, len(trainers))
	for _, t := range trainers {
		views = append(views, domain.TrainerView{Trainer: t, User: domain.SummarizeUser(byID[t.UserID])})
	}
	return views, nil
}

// Update applies patch and re-applies the numeric invariants.
func (s *trainerService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, patch domain.TrainerPatch) (*domain.Trainer, error) {
	trainer, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	patch.Bio = sanitizePtr(patch.Bio)
	patch.Remarks = sanitizePtr(patch.Remarks)
	if patch.Bio != nil {
		if n := textLen(*patch.Bio); n < MinBioLength || n > MaxBioLength {
			return nil, validationError("bio must be between %d and %d characters", MinBioLength, MaxBioLength)
		}
	}
	if patch.Remarks != nil && textLen(*patch.Remarks) > MaxRemarksLength {
		return nil, validationError("remarks must be at most %d characters", MaxRemarksLength)
	}
	if patch.Availability != nil {
		if err := validateAvailability(*patch.Availability); err != nil {
			return nil, err
		}
	}

	updated := patch.Apply(*trainer)
	updated.Normalize(s.now())

	if err := s.trainerRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes the trainer and, best effort, its resume. Courses are left alone.
func (s *trainerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	trainer, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.trainerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrainerNotFound
		}
		return err
	}

	if trainer.Resume != "" {
		(&stagedFile{store: s.files, key: trainer.Resume, logger: s.logger}).release(ctx)
	}
	s.logger.Info("trainer deleted", zap.String("trainerId", id.Hex()))
	return nil
}

func (s *trainerService) UpdateAvailability(ctx context.Context, actor Actor, id primitive.ObjectID, availability []domain.AvailabilitySlot) ([]domain.AvailabilitySlot, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := validateAvailability(availability); err != nil {
		return nil, err
	}

	trainer, err := s.trainerRepo.SetAvailability(ctx, id, availability)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer.Availability, nil
}

func (s *trainerService) UpdateDocuments(ctx context.Context, actor Actor, id primitive.ObjectID, documents []domain.TrainerDocument) ([]domain.TrainerDocument, error) {
	if _, err := s.loadOwned(ctx, actor, id); err != nil {
		return nil, err
	}
	for i, d := range documents {
		if strings.TrimSpace(d.Type) == "" || strings.TrimSpace(d.URL) == "" {
			return nil, validationError("documents[%d]: type and url are required", i)
		}
	}

	trainer, err := s.trainerRepo.SetDocuments(ctx, id, documents)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer.Documents, nil
}

// --- Helpers ---

func (s *trainerService) load(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.trainerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer, nil
}

// loadOwned loads the trainer and checks a trainer-role actor owns it.
func (s *trainerService) loadOwned(ctx context.Context, actor Actor, id primitive.ObjectID) (*domain.Trainer, error) {
	trainer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleTrainer && trainer.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return trainer, nil
}

func (s *trainerService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.trainerRepo.GetByEmail(ctx, email); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// removeUser undoes a user insert after a failed trainer insert.
func (s *trainerService) removeUser(ctx context.Context, id primitive.ObjectID) {
	if err := s.userRepo.Delete(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Warn("failed to remove user after trainer insert failure", zap.String("userId", id.Hex()), zap.Error(err))
	}
}

// missingOnboardFields lists the empty questionnaire fields. Numeric answers
// other than passingYear may legitimately be zero, so presence is checked at binding.
func missingOnboardFields(in OnboardInput) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", in.Name},
		{"email", in.Email},
		{"phoneNo", in.PhoneNo},
		{"qualification", in.Qualification},
		{"expertise", in.Expertise},
		{"feasibleTime", in.FeasibleTime},
		{"location", in.Location},
		{"remarks", in.Remarks},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if in.PassingYear == 0 {
		missing = append(missing, "passingYear")
	}
	return missing
}

func validateAvailability(availability []domain.AvailabilitySlot) error {
	for i, a := range availability {
		if !slices.Contains(domain.Weekdays, a.Day) {
			return validationError("availability[%d]: invalid day %q", i, a.Day)
		}
		if a.Slots == nil {
			return validationError("availability[%d]: slots must be an array", i)
		}
	}
	return nil
}

// splitName splits "Jane van Doe" into "Jane" and "van Doe".
func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}
