package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseStatus moves draft -> published -> completed. Nothing enforces the order.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseCompleted CourseStatus = "completed"
)

type ScheduleEntry struct {
	Date     time.Time `bson:"date" json:"date"`
	Time     string    `bson:"time" json:"time"` // HH:MM, 24h
	Duration int       `bson:"duration" json:"duration"`
}

type Material struct {
	Title string `bson:"title" json:"title"`
	URL   string `bson:"url" json:"url"`
}

// Course is taught by exactly one trainer.
type Course struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Duration         int                `bson:"duration" json:"duration"`
	Price            float64            `bson:"price" json:"price"`
	TrainerID        primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Schedule         []ScheduleEntry    `bson:"schedule" json:"schedule"`
	Materials        []Material         `bson:"materials" json:"materials"`
	Status           CourseStatus       `bson:"status" json:"status"`
	EnrolledStudents int                `bson:"enrolledStudents" json:"enrolledStudents"`
	Rating           float64            `bson:"rating" json:"rating"`
	Category         string             `bson:"category" json:"category"`
	Prerequisites    []string           `bson:"prerequisites" json:"prerequisites"`
	Objectives       []string           `bson:"objectives" json:"objectives"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize enforces the numeric invariants and fills defaults.
func (c *Course) Normalize() {
	if c.Duration < 0 {
		c.Duration = 0
	}
	c.Price = clampMin(c.Price, 0)
	if c.EnrolledStudents < 0 {
		c.EnrolledStudents = 0
	}
	c.Rating = clampRange(c.Rating, 0, 5)
	for i := range c.Schedule {
		if c.Schedule[i].Duration < 0 {
			c.Schedule[i].Duration = 0
		}
	}
	if c.Status == "" {
		c.Status = CourseDraft
	}
	if c.Schedule == nil {
		c.Schedule = []ScheduleEntry{}
	}
	if c.Materials == nil {
		c.Materials = []Material{}
	}
	if c.Prerequisites == nil {
		c.Prerequisites = []string{}
	}
	if c.Objectives == nil {
		c.Objectives = []string{}
	}
}

// CoursePatch lists the fields a course update may touch. Nil means unchanged.
type CoursePatch struct {
	Title         *string
	Description   *string
	Duration      *int
	Price         *float64
	Schedule      *[]ScheduleEntry
	Materials     *[]Material
	Status        *CourseStatus
	Category      *string
	Prerequisites *[]string
	Objectives    *[]string
}

// Apply returns a copy of c with every non-nil patch field assigned.
func (p CoursePatch) Apply(c Course) Course {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Schedule != nil {
		c.Schedule = append([]ScheduleEntry(nil), (*p.Schedule)...)
	}
	if p.Materials != nil {
		c.Materials = append([]Material(nil), (*p.Materials)...)
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Prerequisites != nil {
		c.Prerequisites = append([]string(nil), (*p.Prerequisites)...)
	}
	if p.Objectives != nil {
		c.Objectives = append([]string(nil), (*p.Objectives)...)
	}
	return c
}

// CourseFilter narrows course listings. Empty fields are ignored.
type CourseFilter struct {
	Category  string
	Status    CourseStatus
	TrainerID *primitive.ObjectID
	Query     string // text search over title and description
}

// TrainerSummary is the trainer projection attached to course listings.
type TrainerSummary struct {
	ID         primitive.ObjectID `json:"id"`
	UserID     primitive.ObjectID `json:"userId"`
	Name       string             `json:"name"`
	Skills     []string           `json:"skills"`
	Experience float64            `json:"experience"`
	User       *UserSummary       `json:"user,omitempty"`
}

// UserSummary exposes the identity fields of a linked user.
type UserSummary struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// CourseView is a course joined with its trainer for display.
type CourseView struct {
	Course
	Trainer *TrainerSummary `json:"trainer,omitempty"`
}

// TrainerView is a trainer joined with its user for display.
type TrainerView struct {
	Trainer
	User      *UserSummary `json:"user,omitempty"`
	ResumeURL string       `json:"resumeUrl,omitempty"`
}

// SummarizeUser projects u, tolerating nil.
func SummarizeUser(u *User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}
