package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainerStatus is the lifecycle state of a trainer record.
type TrainerStatus string

const (
	TrainerActive   TrainerStatus = "active"
	TrainerInactive TrainerStatus = "inactive"
)

// Presence tells students whether a trainer is taking sessions right now.
type Presence string

const (
	PresenceAvailable Presence = "available"
	PresenceBusy      Presence = "busy"
	PresenceOffline   Presence = "offline"
)

// MinPassingYear is the earliest accepted graduation year.
const MinPassingYear = 1900

// Weekdays accepted in availability entries.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type AvailabilitySlot struct {
	Day   string   `bson:"day" json:"day"`
	Slots []string `bson:"slots" json:"slots"`
}

type TrainerDocument struct {
	Type string `bson:"type" json:"type"`
	URL  string `bson:"url" json:"url"`
}

// Trainer is the marketplace profile of a user with the trainer role.
// It carries both the onboarding questionnaire and the public profile.
type Trainer struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Name   string             `bson:"name" json:"name"`
	Email  string             `bson:"email" json:"email"`

	// --- Onboarding ---
	PhoneNo               string  `bson:"phoneNo,omitempty" json:"phoneNo,omitempty"`
	Qualification         string  `bson:"qualification,omitempty" json:"qualification,omitempty"`
	PassingYear           int     `bson:"passingYear,omitempty" json:"passingYear,omitempty"`
	Expertise             string  `bson:"expertise,omitempty" json:"expertise,omitempty"`
	TeachingExperience    float64 `bson:"teachingExperience" json:"teachingExperience"`
	DevelopmentExperience float64 `bson:"developmentExperience" json:"developmentExperience"`
	TotalExperience       float64 `bson:"totalExperience" json:"totalExperience"`
	FeasibleTime          string  `bson:"feasibleTime,omitempty" json:"feasibleTime,omitempty"`
	PayoutExpectation     float64 `bson:"payoutExpectation" json:"payoutExpectation"`
	Location              string  `bson:"location,omitempty" json:"location,omitempty"`
	Remarks               string  `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Resume                string  `bson:"resume,omitempty" json:"-"` // Storage key of the uploaded resume

	// --- Profile ---
	Skills            []string           `bson:"skills" json:"skills"`
	Experience        float64            `bson:"experience" json:"experience"`
	Bio               string             `bson:"bio,omitempty" json:"bio,omitempty"`
	HourlyRate        float64            `bson:"hourlyRate" json:"hourlyRate"`
	Availability      []AvailabilitySlot `bson:"availability" json:"availability"`
	Documents         []TrainerDocument  `bson:"documents" json:"documents"`
	Rating            float64            `bson:"rating" json:"rating"`
	TotalSessions     int                `bson:"totalSessions" json:"totalSessions"`
	CompletedSessions int                `bson:"completedSessions" json:"completedSessions"`

	Status    TrainerStatus `bson:"status" json:"status"`
	Presence  Presence      `bson:"presence" json:"presence"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Normalize enforces the numeric invariants and fills defaults.
// passingYear is always clamped into [1900, now.Year()], money and experience to >= 0.
func (t *Trainer) Normalize(now time.Time) {
	t.PassingYear = int(clampRange(float64(t.PassingYear), MinPassingYear, float64(now.Year())))
	t.TeachingExperience = clampMin(t.TeachingExperience, 0)
	t.DevelopmentExperience = clampMin(t.DevelopmentExperience, 0)
	t.TotalExperience = clampMin(t.TotalExperience, 0)
	t.PayoutExpectation = clampMin(t.PayoutExpectation, 0)
	t.Experience = clampMin(t.Experience, 0)
	t.HourlyRate = clampMin(t.HourlyRate, 0)
	t.Rating = clampRange(t.Rating, 0, 5)
	if t.TotalSessions < 0 {
		t.TotalSessions = 0
	}
	if t.CompletedSessions < 0 {
		t.CompletedSessions = 0
	}

	if t.Status == "" {
		t.Status = TrainerActive
	}
	if t.Presence == "" {
		t.Presence = PresenceAvailable
	}
	if t.Skills == nil {
		t.Skills = []string{}
	}
	if t.Availability == nil {
		t.Availability = []AvailabilitySlot{}
	}
	if t.Documents == nil {
		t.Documents = []TrainerDocument{}
	}
}

// TrainerPatch lists the fields a trainer update may touch. Nil means unchanged.
type TrainerPatch struct {
	Name                  *string
	PhoneNo               *string
	Qualification         *string
	PassingYear           *int
	Expertise             *string
	TeachingExperience    *float64
	DevelopmentExperience *float64
	TotalExperience       *float64
	FeasibleTime          *string
	PayoutExpectation     *float64
	Location              *string
	Remarks               *string
	Skills                *[]string
	Experience            *float64
	Bio                   *string
	HourlyRate            *float64
	Availability          *[]AvailabilitySlot
	Status                *TrainerStatus
	Presence              *Presence
}

// Apply returns a copy of t with every non-nil patch field assigned.
func (p TrainerPatch) Apply(t Trainer) Trainer {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.PhoneNo != nil {
		t.PhoneNo = *p.PhoneNo
	}
	if p.Qualification != nil {
		t.Qualification = *p.Qualification
	}
	if p.PassingYear != nil {
		t.PassingYear = *p.PassingYear
	}
	if p.Expertise != nil {
		t.Expertise = *p.Expertise
	}
	if p.TeachingExperience != nil {
		t.TeachingExperience = *p.TeachingExperience
	}
	if p.DevelopmentExperience != nil {
		t.DevelopmentExperience = *p.DevelopmentExperience
	}
	if p.TotalExperience != nil {
		t.TotalExperience = *p.TotalExperience
	}
	if p.FeasibleTime != nil {
		t.FeasibleTime = *p.FeasibleTime
	}
	if p.PayoutExpectation != nil {
		t.PayoutExpectation = *p.PayoutExpectation
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Remarks != nil {
		t.Remarks = *p.Remarks
	}
	if p.Skills != nil {
		t.Skills = append([]string(nil), (*p.Skills)...)
	}
	if p.Experience != nil {
		t.Experience = *p.Experience
	}
	if p.Bio != nil {
		t.Bio = *p.Bio
	}
	if p.HourlyRate != nil {
		t.HourlyRate = *p.HourlyRate
	}
	if p.Availability != nil {
		t.Availability = append([]AvailabilitySlot(nil), (*p.Availability)...)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Presence != nil {
		t.Presence = *p.Presence
	}
	return t
}

// TrainerFilter narrows trainer listings. Empty fields are ignored.
type TrainerFilter struct {
	Location  string
	Expertise string
	Status    TrainerStatus
}
