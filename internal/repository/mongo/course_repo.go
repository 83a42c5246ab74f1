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

const courseCollectionName = "courses"

// mongoCourseRepository implements repository.CourseRepository
type mongoCourseRepository struct {
	collection *mongo.Collection
}

// NewMongoCourseRepository creates a new Course repository backed by MongoDB.
func NewMongoCourseRepository(db *mongo.Database) repository.CourseRepository {
	return &mongoCourseRepository{
		collection: db.Collection(courseCollectionName),
	}
}

// Create inserts a new course.
func (r *mongoCourseRepository) Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error) {
	if course.Title == "" || course.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("course title and trainer ID are required")
	}

	course.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, course)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a course by its ID.
func (r *mongoCourseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error) {
	var course domain.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// List returns courses matching filter. A text query sorts by relevance, otherwise newest first.
func (r *mongoCourseRepository) List(ctx context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.TrainerID != nil {
		query["trainerId"] = *filter.TrainerID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Query != "" {
		query["$text"] = bson.M{"$search": filter.Query}
		score := bson.M{"$meta": "textScore"}
		findOptions = options.Find().
			SetProjection(bson.M{"score": score}).
			SetSort(bson.D{{Key: "score", Value: score}})
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []domain.Course{}
	if err = cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Update overwrites the mutable course fields.
func (r *mongoCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	course.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":            course.Title,
			"description":      course.Description,
			"duration":         course.Duration,
			"price":            course.Price,
			"schedule":         course.Schedule,
			"materials":        course.Materials,
			"status":           course.Status,
			"enrolledStudents": course.EnrolledStudents,
			"rating":           course.Rating,
			"category":         course.Category,
			"prerequisites":    course.Prerequisites,
			"objectives":       course.Objectives,
			"updatedAt":        course.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": course.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a course by ID.
func (r *mongoCourseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetMaterials replaces the materials list and returns the updated course.
func (r *mongoCourseRepository) SetMaterials(ctx context.Context, id primitive.ObjectID, materials []domain.Material) (*domain.Course, error) {
	if materials == nil {
		materials = []domain.Material{}
	}
	return r.setField(ctx, id, "materials", materials)
}

// SetSchedule replaces the schedule and returns the updated course.
func (r *mongoCourseRepository) SetSchedule(ctx context.Context, id primitive.ObjectID, schedule []domain.ScheduleEntry) (*domain.Course, error) {
	if schedule == nil {
		schedule = []domain.ScheduleEntry{}
	}
	return r.setField(ctx, id, "schedule", schedule)
}

func (r *mongoCourseRepository) setField(ctx context.Context, id primitive.ObjectID, field string, value interface{}) (*domain.Course, error) {
	update := bson.M{"$set": bson.M{field: value, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var course domain.Course
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

func courseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("course_text"),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
}
