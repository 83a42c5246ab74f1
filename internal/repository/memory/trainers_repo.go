package memory

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrainersRepo struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]domain.Trainer
}

func NewTrainersRepo() *TrainersRepo {
	return &TrainersRepo{
		items: make(map[primitive.ObjectID]domain.Trainer),
	}
}

var _ repository.TrainerRepository = (*TrainersRepo)(nil)

func (r *TrainersRepo) Create(_ context.Context, trainer *domain.Trainer) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(trainer.Email)
	for _, t := range r.items {
		if t.Email == email || t.UserID == trainer.UserID {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}

	now := time.Now().UTC()
	trainer.ID = primitive.NewObjectID()
	trainer.Email = email
	trainer.CreatedAt = now
	trainer.UpdatedAt = now
	r.items[trainer.ID] = cloneTrainer(*trainer)

	return trainer.ID, nil
}

func (r *TrainersRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Trainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t = cloneTrainer(t)
	return &t, nil
}

func (r *TrainersRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Trainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Trainer{}
	for _, id := range ids {
		if t, ok := r.items[id]; ok {
			out = append(out, cloneTrainer(t))
		}
	}
	return out, nil
}

func (r *TrainersRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.Trainer, error) {
	return r.findFirst(func(t domain.Trainer) bool { return t.UserID == userID })
}

func (r *TrainersRepo) GetByEmail(_ context.Context, email string) (*domain.Trainer, error) {
	email = domain.NormalizeEmail(email)
	return r.findFirst(func(t domain.Trainer) bool { return t.Email == email })
}

func (r *TrainersRepo) List(_ context.Context, filter domain.TrainerFilter) ([]domain.Trainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Trainer{}
	for _, t := range r.items {
		if filter.Location != "" && t.Location != filter.Location {
			continue
		}
		if filter.Expertise != "" && t.Expertise != filter.Expertise {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, cloneTrainer(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TrainersRepo) Update(_ context.Context, trainer *domain.Trainer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.items[trainer.ID]
	if !ok {
		return repository.ErrNotFound
	}
	trainer.UpdatedAt = time.Now().UTC()

	next := cloneTrainer(*trainer)
	next.UserID = cur.UserID
	next.Email = cur.Email
	next.Resume = cur.Resume
	next.Documents = cur.Documents
	next.CreatedAt = cur.CreatedAt
	r.items[trainer.ID] = next
	return nil
}

func (r *TrainersRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TrainersRepo) SetAvailability(_ context.Context, id primitive.ObjectID, availability []domain.AvailabilitySlot) (*domain.Trainer, error) {
	return r.mutate(id, func(t *domain.Trainer) {
		t.Availability = append([]domain.AvailabilitySlot{}, availability...)
	})
}

func (r *TrainersRepo) SetDocuments(_ context.Context, id primitive.ObjectID, documents []domain.TrainerDocument) (*domain.Trainer, error) {
	return r.mutate(id, func(t *domain.Trainer) {
		t.Documents = append([]domain.TrainerDocument{}, documents...)
	})
}

// Len reports the number of stored trainers.
func (r *TrainersRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *TrainersRepo) mutate(id primitive.ObjectID, fn func(*domain.Trainer)) (*domain.Trainer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&t)
	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	out := cloneTrainer(t)
	return &out, nil
}

func (r *TrainersRepo) findFirst(match func(domain.Trainer) bool) (*domain.Trainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.items {
		if match(t) {
			t = cloneTrainer(t)
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func cloneTrainer(t domain.Trainer) domain.Trainer {
	t.Skills = append([]string{}, t.Skills...)
	avail := make([]domain.AvailabilitySlot, 0, len(t.Availability))
	for _, a := range t.Availability {
		avail = append(avail, domain.AvailabilitySlot{Day: a.Day, Slots: append([]string{}, a.Slots...)})
	}
	t.Availability = avail
	t.Documents = append([]domain.TrainerDocument{}, t.Documents...)
	return t
}
