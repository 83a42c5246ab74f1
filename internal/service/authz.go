package service

import (
	"alcyxob/trainer-marketplace/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Operation names a protected action.
type Operation string

const (
	OpTrainerCreate       Operation = "trainer.create"
	OpTrainerUpdate       Operation = "trainer.update"
	OpTrainerAvailability Operation = "trainer.availability"
	OpTrainerDocuments    Operation = "trainer.documents"
	OpTrainerDelete       Operation = "trainer.delete"
	OpCourseCreate        Operation = "course.create"
	OpCourseUpdate        Operation = "course.update"
	OpCourseMaterials     Operation = "course.materials"
	OpCourseSchedule      Operation = "course.schedule"
	OpCourseDelete        Operation = "course.delete"
	OpProfileRead         Operation = "profile.read"
	OpProfileUpdate       Operation = "profile.update"
)

var (
	adminOnly     = []domain.Role{domain.RoleAdmin}
	staff         = []domain.Role{domain.RoleAdmin, domain.RoleTrainer}
	authenticated = []domain.Role{domain.RoleAdmin, domain.RoleTrainer, domain.RoleStudent}
)

// policy is the allow-list of roles per operation.
var policy = map[Operation][]domain.Role{
	OpTrainerCreate:       adminOnly,
	OpTrainerUpdate:       staff,
	OpTrainerAvailability: staff,
	OpTrainerDocuments:    staff,
	OpTrainerDelete:       adminOnly,
	OpCourseCreate:        staff,
	OpCourseUpdate:        staff,
	OpCourseMaterials:     staff,
	OpCourseSchedule:      staff,
	OpCourseDelete:        adminOnly,
	OpProfileRead:         authenticated,
	OpProfileUpdate:       authenticated,
}

// Authorize returns ErrForbidden unless role is allowed to perform op.
// Operations missing from the policy are denied.
func Authorize(role domain.Role, op Operation) error {
	for _, r := range policy[op] {
		if r == role {
			return nil
		}
	}
	return ErrForbidden
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID primitive.ObjectID
	Role   domain.Role
}
