package repository

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TrainerRepository defines the interface for interacting with trainer data.
type TrainerRepository interface {
	Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Trainer, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Trainer, error)
	List(ctx context.Context, filter domain.TrainerFilter) ([]domain.Trainer, error)
	Update(ctx context.Context, trainer *domain.Trainer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SetAvailability and SetDocuments replace the sub-collection wholesale.
	SetAvailability(ctx context.Context, id primitive.ObjectID, availability []domain.AvailabilitySlot) (*domain.Trainer, error)
	SetDocuments(ctx context.Context, id primitive.ObjectID, documents []domain.TrainerDocument) (*domain.Trainer, error)
}

// CourseRepository defines the interface for interacting with course data.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetMaterials(ctx context.Context, id primitive.ObjectID, materials []domain.Material) (*domain.Course, error)
	SetSchedule(ctx context.Context, id primitive.ObjectID, schedule []domain.ScheduleEntry) (*domain.Course, error)
}
