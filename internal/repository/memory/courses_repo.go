package memory

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CoursesRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]domain.Course
}

func NewCoursesRepo() *CoursesRepo {
	return &CoursesRepo{
		items: make(map[primitive.ObjectID]domain.Course),
	}
}

var _ repository.CourseRepository = (*CoursesRepo)(nil)

func (r *CoursesRepo) Create(_ context.Context, course *domain.Course) (primitive.ObjectID, error) {
	now := time.Now().UTC()
	course.ID = primitive.NewObjectID()
	course.CreatedAt = now
	course.UpdatedAt = now

	r.mu.Lock()
	r.items[course.ID] = cloneCourse(*course)
	r.mu.Unlock()

	return course.ID, nil
}

func (r *CoursesRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = cloneCourse(c)
	return &c, nil
}

// List matches the text query as a case-insensitive substring of title or description.
func (r *CoursesRepo) List(_ context.Context, filter domain.CourseFilter) ([]domain.Course, error) {
	q := strings.ToLower(strings.TrimSpace(filter.Query))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Course{}
	for _, c := range r.items {
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.TrainerID != nil && c.TrainerID != *filter.TrainerID {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Title), q) &&
			!strings.Contains(strings.ToLower(c.Description), q) {
			continue
		}
		out = append(out, cloneCourse(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CoursesRepo) Update(_ context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[course.ID]
	if !ok {
		return repository.ErrNotFound
	}
	course.UpdatedAt = time.Now().UTC()

	next := cloneCourse(*course)
	next.TrainerID = cur.TrainerID
	next.CreatedAt = cur.CreatedAt
	r.items[course.ID] = next
	return nil
}

func (r *CoursesRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *CoursesRepo) SetMaterials(_ context.Context, id primitive.ObjectID, materials []domain.Material) (*domain.Course, error) {
	return r.mutate(id, func(c *domain.Course) {
		c.Materials = append([]domain.Material{}, materials...)
	})
}

func (r *CoursesRepo) SetSchedule(_ context.Context, id primitive.ObjectID, schedule []domain.ScheduleEntry) (*domain.Course, error) {
	return r.mutate(id, func(c *domain.Course) {
		c.Schedule = append([]domain.ScheduleEntry{}, schedule...)
	})
}

// Len reports the number of stored courses.
func (r *CoursesRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *CoursesRepo) mutate(id primitive.ObjectID, fn func(*domain.Course)) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&c)
	c.UpdatedAt = time.Now().UTC()
	r.items[id] = c

	out := cloneCourse(c)
	return &out, nil
}

func cloneCourse(c domain.Course) domain.Course {
	c.Schedule = append([]domain.ScheduleEntry{}, c.Schedule...)
	c.Materials = append([]domain.Material{}, c.Materials...)
	c.Prerequisites = append([]string{}, c.Prerequisites...)
	c.Objectives = append([]string{}, c.Objectives...)
	return c
}
