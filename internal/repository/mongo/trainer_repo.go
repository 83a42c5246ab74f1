package mongo

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainerCollectionName = "trainers"

// mongoTrainerRepository implements repository.TrainerRepository
type mongoTrainerRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainerRepository creates a new Trainer repository backed by MongoDB.
func NewMongoTrainerRepository(db *mongo.Database) repository.TrainerRepository {
	return &mongoTrainerRepository{
		collection: db.Collection(trainerCollectionName),
	}
}

// Create inserts a trainer. Unique userId/email violations surface as ErrDuplicateKey.
func (r *mongoTrainerRepository) Create(ctx context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	if trainer.Email == "" || trainer.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("trainer email and user ID are required")
	}

	trainer.ID = primitive.NewObjectID()
	trainer.Email = domain.NormalizeEmail(trainer.Email)
	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, trainer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a trainer by its ID.
func (r *mongoTrainerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByUserID retrieves the trainer record linked to a user.
func (r *mongoTrainerRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// GetByEmail retrieves a trainer by email, ignoring case.
func (r *mongoTrainerRepository) GetByEmail(ctx context.Context, email string) (*domain.Trainer, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

// GetByIDs returns the trainers that exist among ids.
func (r *mongoTrainerRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Trainer, error) {
	if len(ids) == 0 {
		return []domain.Trainer{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// List returns trainers matching filter, newest first.
func (r *mongoTrainerRepository) List(ctx context.Context, filter domain.TrainerFilter) ([]domain.Trainer, error) {
	query := bson.M{}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if filter.Expertise != "" {
		query["expertise"] = filter.Expertise
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, query, findOptions)
}

// Update replaces the stored trainer document. userId, email and createdAt are kept.
func (r *mongoTrainerRepository) Update(ctx context.Context, trainer *domain.Trainer) error {
	trainer.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":                  trainer.Name,
			"phoneNo":               trainer.PhoneNo,
			"qualification":         trainer.Qualification,
			"passingYear":           trainer.PassingYear,
			"expertise":             trainer.Expertise,
			"teachingExperience":    trainer.TeachingExperience,
			"developmentExperience": trainer.DevelopmentExperience,
			"totalExperience":       trainer.TotalExperience,
			"feasibleTime":          trainer.FeasibleTime,
			"payoutExpectation":     trainer.PayoutExpectation,
			"location":              trainer.Location,
			"remarks":               trainer.Remarks,
			"skills":                trainer.Skills,
			"experience":            trainer.Experience,
			"bio":                   trainer.Bio,
			"hourlyRate":            trainer.HourlyRate,
			"availability":          trainer.Availability,
			"rating":                trainer.Rating,
			"totalSessions":         trainer.TotalSessions,
			"completedSessions":     trainer.CompletedSessions,
			"status":                trainer.Status,
			"presence":              trainer.Presence,
			"updatedAt":             trainer.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": trainer.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a trainer by ID.
func (r *mongoTrainerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetAvailability replaces the availability list and returns the updated trainer.
func (r *mongoTrainerRepository) SetAvailability(ctx context.Context, id primitive.ObjectID, availability []domain.AvailabilitySlot) (*domain.Trainer, error) {
	if availability == nil {
		availability = []domain.AvailabilitySlot{}
	}
	return r.setField(ctx, id, "availability", availability)
}

// SetDocuments replaces the documents list and returns the updated trainer.
func (r *mongoTrainerRepository) SetDocuments(ctx context.Context, id primitive.ObjectID, documents []domain.TrainerDocument) (*domain.Trainer, error) {
	if documents == nil {
		documents = []domain.TrainerDocument{}
	}
	return r.setField(ctx, id, "documents", documents)
}

func (r *mongoTrainerRepository) setField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) (*domain.Trainer, error) {
	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var trainer domain.Trainer
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

func (r *mongoTrainerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Trainer, error) {
	var trainer domain.Trainer
	err := r.collection.FindOne(ctx, filter).Decode(&trainer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &trainer, nil
}

func (r *mongoTrainerRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Trainer, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trainers := []domain.Trainer{}
	if err = cursor.All(ctx, &trainers); err != nil {
		return nil, err
	}
	return trainers, nil
}

func trainerIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "location", Value: 1}}},
		{Keys: bson.D{{Key: "expertise", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
}
