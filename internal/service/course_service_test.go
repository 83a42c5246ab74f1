package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func courseInput(trainerID primitive.ObjectID) CreateCourseInput {
	return CreateCourseInput{
		Title:       "Go for Backend Engineers",
		Description: "Services, <i>concurrency</i> and testing in Go",
		Duration:    12,
		Price:       199,
		TrainerID:   trainerID,
		Schedule: []domain.ScheduleEntry{
			{Date: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), Time: "18:30", Duration: 90},
		},
		Category:      "programming",
		Prerequisites: []string{"basic programming"},
		Objectives:    []string{"write a REST service"},
	}
}

func TestCreateCourse_UnknownTrainerPersistsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.course.Create(context.Background(), adminActor(), courseInput(primitive.NewObjectID()))
	assert.ErrorIs(t, err, ErrTrainerNotFound)
	assert.Zero(t, f.courses.Len())
}

func TestCreateCourse_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, tr := f.seedTrainer(t, "teach@example.com")

	c, err := f.course.Create(ctx, actorFor(user), courseInput(tr.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.CourseDraft, c.Status)
	assert.Equal(t, "Services, concurrency and testing in Go", c.Description)
	assert.NotNil(t, c.Materials)
	assert.Equal(t, 1, f.courses.Len())

	view, err := f.course.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Trainer)
	assert.Equal(t, tr.ID, view.Trainer.ID)
	assert.Equal(t, []string{"go", "mongodb"}, view.Trainer.Skills)
	require.NotNil(t, view.Trainer.User)
	assert.Equal(t, "teach@example.com", view.Trainer.User.Email)
}

func TestCreateCourse_TrainerMayOnlyCreateForThemselves(t *testing.T) {
	f := newFixture(t)
	_, tr := f.seedTrainer(t, "a@example.com")
	other, _ := f.seedTrainer(t, "b@example.com")

	_, err := f.course.Create(context.Background(), actorFor(other), courseInput(tr.ID))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, f.courses.Len())
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newFixture(t)
	_, tr := f.seedTrainer(t, "val@example.com")

	in := courseInput(tr.ID)
	in.Title = " "
	_, err := f.course.Create(context.Background(), adminActor(), in)
	assert.ErrorIs(t, err, ErrValidation)

	in = courseInput(tr.ID)
	in.Materials = []domain.Material{{Title: "", URL: "https://example.com"}}
	_, err = f.course.Create(context.Background(), adminActor(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateCourse_StatusTransitionsUnguarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "status@example.com")
	c, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)

	for _, st := range []domain.CourseStatus{domain.CourseCompleted, domain.CourseDraft, domain.CoursePublished} {
		status := st
		got, err := f.course.Update(ctx, adminActor(), c.ID, domain.CoursePatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
		assert.Equal(t, c.Title, got.Title)
	}
}

func TestUpdateCourse_TruthyMergeAndInvariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "merge-course@example.com")
	c, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)

	empty, zero := "", 0.0
	got, err := f.course.Update(ctx, adminActor(), c.ID, domain.CoursePatch{
		Title: domain.Truthy(&empty),
		Price: domain.Truthy(&zero),
	})
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, c.Price, got.Price)

	negative := -50.0
	got, err = f.course.Update(ctx, adminActor(), c.ID, domain.CoursePatch{Price: &negative})
	require.NoError(t, err)
	assert.Zero(t, got.Price)
}

func TestUpdateCourse_MarkupOnlyDescriptionKeepsStoredValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "markup-course@example.com")
	c, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)

	markup := "<div><br></div>"
	got, err := f.course.Update(ctx, adminActor(), c.ID, domain.CoursePatch{Description: &markup})
	require.NoError(t, err)
	assert.Equal(t, c.Description, got.Description)

	in := courseInput(tr.ID)
	in.Description = "<p></p>"
	_, err = f.course.Create(ctx, adminActor(), in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCourseOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, tr := f.seedTrainer(t, "own@example.com")
	intruder, _ := f.seedTrainer(t, "intruder@example.com")
	c, err := f.course.Create(ctx, actorFor(owner), courseInput(tr.ID))
	require.NoError(t, err)

	title := "Hijacked"
	_, err = f.course.Update(ctx, actorFor(intruder), c.ID, domain.CoursePatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.course.UpdateMaterials(ctx, actorFor(intruder), c.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.course.UpdateSchedule(ctx, actorFor(owner), c.ID, []domain.ScheduleEntry{})
	assert.NoError(t, err)
}

func TestUpdateMaterialsAndSchedule_Replace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "subs@example.com")
	c, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)

	materials := []domain.Material{{Title: "Slides", URL: "https://example.com/slides"}}
	gotMaterials, err := f.course.UpdateMaterials(ctx, adminActor(), c.ID, materials)
	require.NoError(t, err)
	assert.Equal(t, materials, gotMaterials)

	// Overlapping entries are accepted as-is.
	day := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	schedule := []domain.ScheduleEntry{
		{Date: day, Time: "10:00", Duration: 60},
		{Date: day, Time: "10:30", Duration: -5},
	}
	gotSchedule, err := f.course.UpdateSchedule(ctx, adminActor(), c.ID, schedule)
	require.NoError(t, err)
	require.Len(t, gotSchedule, 2)
	assert.Zero(t, gotSchedule[1].Duration)

	view, err := f.course.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, view.Schedule, 2)
	assert.Equal(t, "10:00", view.Schedule[0].Time)

	_, err = f.course.UpdateMaterials(ctx, adminActor(), primitive.NewObjectID(), materials)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestDeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "del@example.com")
	c, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)

	require.NoError(t, f.course.Delete(ctx, c.ID))
	_, err = f.course.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.ErrorIs(t, f.course.Delete(ctx, c.ID), ErrCourseNotFound)
}

func TestListCourses_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "list@example.com")

	_, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)
	art := courseInput(tr.ID)
	art.Title, art.Description, art.Category = "Watercolor", "Painting basics", "art"
	_, err = f.course.Create(ctx, adminActor(), art)
	require.NoError(t, err)

	all, err := f.course.List(ctx, domain.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, v := range all {
		require.NotNil(t, v.Trainer)
		assert.Equal(t, tr.ID, v.Trainer.ID)
	}

	byCategory, err := f.course.List(ctx, domain.CourseFilter{Category: "art"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Watercolor", byCategory[0].Title)

	byQuery, err := f.course.List(ctx, domain.CourseFilter{Query: "concurrency"})
	require.NoError(t, err)
	assert.Len(t, byQuery, 1)
}

func TestGetCourse_TrainerDeletedLeavesCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "orphan@example.com")
	c, err := f.course.Create(ctx, adminActor(), courseInput(tr.ID))
	require.NoError(t, err)

	require.NoError(t, f.trainer.Delete(ctx, tr.ID))

	view, err := f.course.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Trainer)
}
