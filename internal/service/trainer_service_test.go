package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository/memory"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func onboardInput(email string) OnboardInput {
	return OnboardInput{
		Name:                  "Priya Sharma",
		Email:                 email,
		PhoneNo:               "+91 98765 43210",
		Qualification:         "B.Tech",
		PassingYear:           2015,
		Expertise:             "Data Engineering",
		TeachingExperience:    3,
		DevelopmentExperience: 6,
		TotalExperience:       9,
		FeasibleTime:          "evenings",
		PayoutExpectation:     1500,
		Location:              "Pune",
		Remarks:               "Available from next month",
	}
}

func pdfResume() *ResumeUpload {
	body := "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"
	return &ResumeUpload{Filename: "cv.pdf", Size: int64(len(body)), Content: strings.NewReader(body)}
}

func TestOnboard_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr, err := f.trainer.Onboard(ctx, onboardInput("Priya@Example.com"), pdfResume())
	require.NoError(t, err)

	assert.Equal(t, domain.TrainerActive, tr.Status)
	assert.Equal(t, "priya@example.com", tr.Email)
	assert.True(t, strings.HasPrefix(tr.Resume, "resumes/"))
	assert.True(t, strings.HasSuffix(tr.Resume, ".pdf"))
	assert.Equal(t, 1, f.storedFiles(t))

	// The backing user can sign in with the default password.
	_, user, err := f.auth.Login(ctx, "priya@example.com", testDefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, user.Role)
	assert.Equal(t, user.ID, tr.UserID)
	assert.Equal(t, "Priya", user.FirstName)
	assert.Equal(t, "Sharma", user.LastName)

	view, err := f.trainer.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+tr.Resume, view.ResumeURL)
	require.NotNil(t, view.User)
	assert.Equal(t, "priya@example.com", view.User.Email)
}

func TestOnboard_WithoutResume(t *testing.T) {
	f := newFixture(t)

	tr, err := f.trainer.Onboard(context.Background(), onboardInput("nores@example.com"), nil)
	require.NoError(t, err)
	assert.Empty(t, tr.Resume)
	assert.Zero(t, f.storedFiles(t))
}

func TestOnboard_DuplicateEmailLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, RegisterInput{
		FirstName: "Existing", LastName: "User", Email: "taken@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = f.trainer.Onboard(ctx, onboardInput("TAKEN@example.com"), pdfResume())
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	assert.Equal(t, 1, f.users.Len())
	assert.Zero(t, f.trainers.Len())
	assert.Zero(t, f.storedFiles(t))
}

func TestOnboard_TrainerInsertFailureCompensates(t *testing.T) {
	f := newFixture(t)
	svc := f.trainerService(failingTrainers{memory.NewTrainersRepo()}, f.files)

	_, err := svc.Onboard(context.Background(), onboardInput("rollback@example.com"), pdfResume())
	assert.ErrorIs(t, err, errInsertFailed)

	assert.Zero(t, f.users.Len(), "user must be removed")
	assert.Zero(t, f.storedFiles(t), "resume must be removed")
}

func TestOnboard_ResumeValidation(t *testing.T) {
	tests := []struct {
		name   string
		upload *ResumeUpload
	}{
		{"unsupported extension", &ResumeUpload{Filename: "cv.txt", Size: 5, Content: strings.NewReader("hello")}},
		{"content does not match extension", &ResumeUpload{Filename: "cv.pdf", Size: 11, Content: strings.NewReader("hello world")}},
		{"declared size over limit", &ResumeUpload{Filename: "cv.pdf", Size: testMaxResumeSize + 1, Content: strings.NewReader("%PDF-1.4")}},
		{"actual size over limit", &ResumeUpload{Filename: "cv.pdf", Size: 1, Content: strings.NewReader("%PDF-1.4\n" + strings.Repeat("a", testMaxResumeSize))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.trainer.Onboard(context.Background(), onboardInput("v@example.com"), tt.upload)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, f.users.Len())
			assert.Zero(t, f.storedFiles(t))
		})
	}
}

func TestOnboard_PassingYearClamped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := onboardInput("future@example.com")
	in.PassingYear = 3000
	tr, err := f.trainer.Onboard(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Year(), tr.PassingYear)

	in = onboardInput("past@example.com")
	in.PassingYear = 1800
	tr, err = f.trainer.Onboard(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.MinPassingYear, tr.PassingYear)
}

func TestOnboard_RemarksSanitizedAndBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := onboardInput("remarks@example.com")
	in.Remarks = "<script>alert(1)</script><b>Weekends</b> only"
	tr, err := f.trainer.Onboard(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "Weekends only", tr.Remarks)

	in = onboardInput("encoded@example.com")
	in.Remarks = "&lt;script&gt;alert(1)&lt;/script&gt; Weekends, Tom &amp; Jerry"
	tr, err = f.trainer.Onboard(ctx, in, nil)
	require.NoError(t, err)
	assert.NotContains(t, tr.Remarks, "<")
	assert.NotContains(t, tr.Remarks, "alert")
	assert.Equal(t, "Weekends, Tom & Jerry", tr.Remarks)

	in = onboardInput("markup-only@example.com")
	in.Remarks = "<p></p>"
	_, err = f.trainer.Onboard(ctx, in, nil)
	assert.ErrorIs(t, err, ErrValidation)

	in = onboardInput("long@example.com")
	in.Remarks = strings.Repeat("x", MaxRemarksLength+1)
	_, err = f.trainer.Onboard(ctx, in, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOnboard_RequiresEveryAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.trainer.Onboard(ctx, OnboardInput{Name: "Only Name", Email: "min@example.com"}, nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "phoneNo")
	assert.Contains(t, err.Error(), "passingYear")
	assert.Equal(t, 0, f.users.Len())
	assert.Equal(t, 0, f.trainers.Len())

	in := onboardInput("blank@example.com")
	in.Location = "   "
	_, err = f.trainer.Onboard(ctx, in, nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "location")
}

func TestCreateProfile_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.trainer.CreateProfile(ctx, CreateProfileInput{UserID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, student, err := f.auth.Register(ctx, RegisterInput{FirstName: "S", LastName: "T", Email: "s@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = f.trainer.CreateProfile(ctx, CreateProfileInput{UserID: student.ID, Bio: strings.Repeat("b", 60)})
	assert.ErrorIs(t, err, ErrValidation)

	user, tr := f.seedTrainer(t, "tess@example.com")
	assert.Equal(t, "Tess Trainer", tr.Name)
	assert.Equal(t, "tess@example.com", tr.Email)
	assert.Equal(t, domain.PresenceAvailable, tr.Presence)

	_, err = f.trainer.CreateProfile(ctx, CreateProfileInput{UserID: user.ID, Bio: strings.Repeat("b", 60)})
	assert.ErrorIs(t, err, ErrTrainerExists)
}

func TestUpdate_TruthyMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "merge@example.com")

	empty, zero := "", 0.0
	got, err := f.trainer.Update(ctx, adminActor(), tr.ID, domain.TrainerPatch{
		Bio:        domain.Truthy(&empty),
		HourlyRate: domain.Truthy(&zero),
	})
	require.NoError(t, err)
	assert.Equal(t, tr.Bio, got.Bio)
	assert.Equal(t, tr.HourlyRate, got.HourlyRate)

	bio := "A refreshed bio that is comfortably longer than fifty characters."
	got, err = f.trainer.Update(ctx, adminActor(), tr.ID, domain.TrainerPatch{Bio: domain.Truthy(&bio)})
	require.NoError(t, err)
	assert.Equal(t, bio, got.Bio)
	assert.Equal(t, tr.HourlyRate, got.HourlyRate)
	assert.Equal(t, tr.Skills, got.Skills)

	stored, err := f.trainer.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, bio, stored.Bio)
}

func TestUpdate_MarkupOnlyTextKeepsStoredValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, tr := f.seedTrainer(t, "markup@example.com")

	remarks := "Prefers weekend batches"
	_, err := f.trainer.Update(ctx, adminActor(), tr.ID, domain.TrainerPatch{Remarks: &remarks})
	require.NoError(t, err)

	markup := "<p></p>"
	got, err := f.trainer.Update(ctx, adminActor(), tr.ID, domain.TrainerPatch{Bio: &markup})
	require.NoError(t, err)
	assert.Equal(t, tr.Bio, got.Bio)

	got, err = f.trainer.Update(ctx, adminActor(), tr.ID, domain.TrainerPatch{Remarks: &markup})
	require.NoError(t, err)
	assert.Equal(t, remarks, got.Remarks)

	stored, err := f.trainer.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Bio, stored.Bio)
	assert.Equal(t, remarks, stored.Remarks)
}

func TestUpdate_ReappliesInvariants(t *testing.T) {
	f := newFixture(t)
	_, tr := f.seedTrainer(t, "clamp@example.com")

	year, rate := 3000, -10.0
	got, err := f.trainer.Update(context.Background(), adminActor(), tr.ID, domain.TrainerPatch{
		PassingYear: &year,
		HourlyRate:  &rate,
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Year(), got.PassingYear)
	assert.Zero(t, got.HourlyRate)
}

func TestUpdate_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner, tr := f.seedTrainer(t, "owner@example.com")
	other, _ := f.seedTrainer(t, "other@example.com")

	loc := "Berlin"
	_, err := f.trainer.Update(ctx, actorFor(other), tr.ID, domain.TrainerPatch{Location: &loc})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.trainer.Update(ctx, actorFor(owner), tr.ID, domain.TrainerPatch{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Berlin", got.Location)

	_, err = f.trainer.Update(ctx, adminActor(), primitive.NewObjectID(), domain.TrainerPatch{Location: &loc})
	assert.ErrorIs(t, err, ErrTrainerNotFound)
}

func TestUpdateAvailability_Replaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, tr := f.seedTrainer(t, "avail@example.com")

	got, err := f.trainer.UpdateAvailability(ctx, actorFor(user), tr.ID, []domain.AvailabilitySlot{
		{Day: "Wednesday", Slots: []string{"14:00-16:00"}},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Wednesday", got[0].Day)

	view, err := f.trainer.Get(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, view.Availability, 1)
	assert.Equal(t, "Wednesday", view.Availability[0].Day)

	_, err = f.trainer.UpdateAvailability(ctx, actorFor(user), tr.ID, []domain.AvailabilitySlot{{Day: "Funday", Slots: []string{}}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateDocuments(t *testing.T) {
	f := newFixture(t)
	_, tr := f.seedTrainer(t, "docs@example.com")

	docs := []domain.TrainerDocument{{Type: "certificate", URL: "https://example.com/cert.pdf"}}
	got, err := f.trainer.UpdateDocuments(context.Background(), adminActor(), tr.ID, docs)
	require.NoError(t, err)
	assert.Equal(t, docs, got)

	_, err = f.trainer.UpdateDocuments(context.Background(), adminActor(), tr.ID, []domain.TrainerDocument{{Type: "", URL: "x"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDelete_RemovesTrainerAndResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr, err := f.trainer.Onboard(ctx, onboardInput("gone@example.com"), pdfResume())
	require.NoError(t, err)
	require.Equal(t, 1, f.storedFiles(t))

	require.NoError(t, f.trainer.Delete(ctx, tr.ID))
	assert.Zero(t, f.storedFiles(t))

	_, err = f.trainer.Get(ctx, tr.ID)
	assert.ErrorIs(t, err, ErrTrainerNotFound)
	assert.ErrorIs(t, f.trainer.Delete(ctx, tr.ID), ErrTrainerNotFound)
}

func TestList_FiltersAndJoinsUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.trainer.Onboard(ctx, onboardInput("pune@example.com"), nil)
	require.NoError(t, err)
	in := onboardInput("delhi@example.com")
	in.Location = "Delhi"
	_, err = f.trainer.Onboard(ctx, in, nil)
	require.NoError(t, err)

	all, err := f.trainer.List(ctx, domain.TrainerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pune, err := f.trainer.List(ctx, domain.TrainerFilter{Location: "Pune"})
	require.NoError(t, err)
	require.Len(t, pune, 1)
	require.NotNil(t, pune[0].User)
	assert.Equal(t, "pune@example.com", pune[0].User.Email)
}

// flakyStorage fails deletes so cleanup errors can be observed.
type flakyStorage struct {
	mock.Mock
}

func (m *flakyStorage) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	return m.Called(ctx, key, r, contentType).Error(0)
}

func (m *flakyStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *flakyStorage) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func TestOnboard_CleanupFailureIsNotEscalated(t *testing.T) {
	f := newFixture(t)
	files := &flakyStorage{}
	files.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything, "application/pdf").Return(nil)
	files.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(errors.New("bucket unreachable"))

	svc := f.trainerService(failingTrainers{memory.NewTrainersRepo()}, files)
	_, err := svc.Onboard(context.Background(), onboardInput("flaky@example.com"), pdfResume())

	// The insert failure is reported, not the cleanup failure.
	assert.ErrorIs(t, err, errInsertFailed)
	files.AssertNumberOfCalls(t, "Delete", 1)
}
