package service

import (
	"alcyxob/trainer-marketplace/internal/config"
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"alcyxob/trainer-marketplace/internal/repository/memory"
	"alcyxob/trainer-marketplace/internal/storage"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	testDefaultPassword = "Trainer@123"
	testMaxResumeSize   = 1 << 10
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type fixture struct {
	users    *memory.UsersRepo
	trainers *memory.TrainersRepo
	courses  *memory.CoursesRepo
	dir      string
	files    storage.FileStorage
	tokens   *TokenService
	logger   *zap.Logger
	auth     AuthService
	trainer  TrainerService
	course   CourseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    memory.NewUsersRepo(),
		trainers: memory.NewTrainersRepo(),
		courses:  memory.NewCoursesRepo(),
		dir:      t.TempDir(),
		logger:   zaptest.NewLogger(t),
	}

	local, err := storage.NewLocalStorage(f.dir, "/uploads")
	require.NoError(t, err)
	f.files = local

	f.tokens, err = NewTokenService(config.JWTConfig{Secret: "test-secret", Expiration: time.Hour})
	require.NoError(t, err)

	f.auth = NewAuthService(f.users, f.tokens, f.logger)
	f.trainer = f.trainerService(f.trainers, f.files)
	f.course = NewCourseService(f.courses, f.trainers, f.users, f.logger)
	return f
}

// trainerService builds a TrainerService over the fixture's users with a fixed clock.
func (f *fixture) trainerService(trainers repository.TrainerRepository, files storage.FileStorage) TrainerService {
	svc := NewTrainerService(f.users, trainers, files, TrainerSettings{
		DefaultPassword: testDefaultPassword,
		MaxResumeSize:   testMaxResumeSize,
	}, f.logger).(*trainerService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// storedFiles counts regular files under the storage directory.
func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(f.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

// seedTrainer creates a trainer user plus its trainer record and returns both.
func (f *fixture) seedTrainer(t *testing.T, email string) (*domain.User, *domain.Trainer) {
	t.Helper()
	ctx := context.Background()

	_, user, err := f.auth.Register(ctx, RegisterInput{
		FirstName: "Tess",
		LastName:  "Trainer",
		Email:     email,
		Password:  "secret123",
		Role:      domain.RoleTrainer,
	})
	require.NoError(t, err)

	tr, err := f.trainer.CreateProfile(ctx, CreateProfileInput{
		UserID:     user.ID,
		Skills:     []string{"go", "mongodb"},
		Experience: 4,
		Bio:        "Backend engineer who has been teaching distributed systems for years.",
		HourlyRate: 60,
		Availability: []domain.AvailabilitySlot{
			{Day: "Monday", Slots: []string{"09:00-11:00"}},
		},
	})
	require.NoError(t, err)
	return user, tr
}

func adminActor() Actor {
	return Actor{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin}
}

func actorFor(u *domain.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// failingTrainers rejects every insert.
type failingTrainers struct {
	*memory.TrainersRepo
}

var errInsertFailed = errors.New("insert failed")

func (failingTrainers) Create(context.Context, *domain.Trainer) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errInsertFailed
}
