package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskly/task-tracker/internal/core/domain"
	"github.com/taskly/task-tracker/internal/core/ports"
)

// maxUpdateAttempts bounds the optimistic retry loop in Update.
const maxUpdateAttempts = 3

var errConcurrentUpdate = errors.New("task modified concurrently")

type TaskRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		coll:     db.Collection(collectionTasks),
		counters: db.Collection(collectionCounters),
	}
}

type taskDoc struct {
	ID          int64     `bson:"_id"`
	UserID      int64     `bson:"user_id"`
	Task        string    `bson:"task"`
	Description *string   `bson:"description"`
	Deadline    *string   `bson:"deadline"`
	Completed   bool      `bson:"completed"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toTaskDoc(t *domain.Task) taskDoc {
	doc := taskDoc{
		ID:          t.ID,
		UserID:      t.UserID,
		Task:        t.Task,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC().Truncate(domain.TimestampPrecision),
		UpdatedAt:   t.UpdatedAt.UTC().Truncate(domain.TimestampPrecision),
	}
	if t.Deadline != nil {
		s := t.Deadline.String()
		doc.Deadline = &s
	}
	return doc
}

func (d taskDoc) toDomain() (*domain.Task, error) {
	t := &domain.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Task:        d.Task,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.Deadline != nil {
		date, err := domain.ParseDate(*d.Deadline)
		if err != nil {
			return nil, fmt.Errorf("task %d: stored deadline: %w", d.ID, err)
		}
		t.Deadline = &date
	}
	return t, nil
}

func ownedFilter(userID, taskID int64) bson.M {
	return bson.M{"_id": taskID, "user_id": userID}
}

// ListByOwner sorts in process: Mongo orders null before any value, and the
// listing needs undated tasks last.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID int64) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]*domain.Task, 0)
	for cursor.Next(ctx) {
		var doc taskDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode task: %w", err)
		}
		t, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	slices.SortFunc(tasks, domain.CompareTasks)
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, userID, taskID)
}

func (r *TaskRepository) find(ctx context.Context, userID, taskID int64) (*domain.Task, error) {
	var doc taskDoc
	if err := r.coll.FindOne(ctx, ownedFilter(userID, taskID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain()
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.counters, collectionTasks)
	if err != nil {
		return nil, err
	}

	doc := toTaskDoc(task)
	doc.ID = id
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain()
}

// Update is a compare-and-swap on updated_at: the replacement only matches
// if nobody else wrote the task since it was read, otherwise the read and
// mutation are retried against the fresh state.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID int64, mutate ports.TaskMutation) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := r.find(ctx, userID, taskID)
		if err != nil {
			return nil, err
		}
		seen := toTaskDoc(current).UpdatedAt

		if err := mutate(current); err != nil {
			return nil, err
		}
		current.ID, current.UserID = taskID, userID

		doc := toTaskDoc(current)
		filter := ownedFilter(userID, taskID)
		filter["updated_at"] = seen

		res, err := r.coll.ReplaceOne(ctx, filter, doc)
		if err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		if res.MatchedCount == 1 {
			return doc.toDomain()
		}
	}
	return nil, fmt.Errorf("update task %d: %w", taskID, errConcurrentUpdate)
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, ownedFilter(userID, taskID))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
