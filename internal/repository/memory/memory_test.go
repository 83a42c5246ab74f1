package memory

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUsersRepo_DuplicateEmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	_, err := repo.Create(ctx, &domain.User{Email: "Jane@Example.com", PasswordHash: "x", Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Email: "jane@example.com", PasswordHash: "y", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	u, err := repo.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
}

func TestTrainersRepo_SetAvailabilityReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainersRepo()

	tr := &domain.Trainer{
		UserID: primitive.NewObjectID(),
		Email:  "t@example.com",
		Availability: []domain.AvailabilitySlot{
			{Day: "Monday", Slots: []string{"09:00"}},
		},
	}
	id, err := repo.Create(ctx, tr)
	require.NoError(t, err)

	got, err := repo.SetAvailability(ctx, id, []domain.AvailabilitySlot{{Day: "Friday", Slots: []string{"18:00"}}})
	require.NoError(t, err)
	require.Len(t, got.Availability, 1)
	assert.Equal(t, "Friday", got.Availability[0].Day)

	_, err = repo.SetAvailability(ctx, primitive.NewObjectID(), nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTrainersRepo_UniqueUserID(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainersRepo()
	userID := primitive.NewObjectID()

	_, err := repo.Create(ctx, &domain.Trainer{UserID: userID, Email: "a@example.com"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Trainer{UserID: userID, Email: "b@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestCoursesRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewCoursesRepo()
	trainerA, trainerB := primitive.NewObjectID(), primitive.NewObjectID()

	seed := []domain.Course{
		{Title: "Intro to Go", Description: "goroutines and channels", Category: "programming", Status: domain.CoursePublished, TrainerID: trainerA},
		{Title: "Advanced Rust", Description: "ownership deep dive", Category: "programming", Status: domain.CourseDraft, TrainerID: trainerB},
		{Title: "Watercolor", Description: "painting basics", Category: "art", Status: domain.CoursePublished, TrainerID: trainerA},
	}
	for i := range seed {
		_, err := repo.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter domain.CourseFilter
		want   int
	}{
		{"no filter", domain.CourseFilter{}, 3},
		{"category", domain.CourseFilter{Category: "programming"}, 2},
		{"status", domain.CourseFilter{Status: domain.CoursePublished}, 2},
		{"trainer", domain.CourseFilter{TrainerID: &trainerA}, 2},
		{"text query on description", domain.CourseFilter{Query: "CHANNELS"}, 1},
		{"combined", domain.CourseFilter{Category: "programming", TrainerID: &trainerB}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCoursesRepo_ReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewCoursesRepo()

	c := &domain.Course{Title: "Go", TrainerID: primitive.NewObjectID(), Objectives: []string{"one"}}
	id, err := repo.Create(ctx, c)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	got.Objectives[0] = "changed"

	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "one", again.Objectives[0])
}
