package dummydb

import (
	"sort"

	"github.com/eaduck/eaduck/core/task"
)

type taskRepository struct {
	db    *DB
	tasks *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db, tasks: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.tasks.table))
	for _, t := range repo.tasks.table {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (repo *taskRepository) CreateTask(t task.Task) (task.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	repo.tasks.pkCount++
	t.ID = repo.tasks.pkCount
	repo.tasks.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) QueryAllTasks() ([]task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()
	return repo.query(), nil
}

func (repo *taskRepository) GetTaskByID(id int) (task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	if t, ok := repo.tasks.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasksByClassroomIDs(roomIDs ...int) ([]task.Task, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()

	var tasks []task.Task
	for _, t := range repo.query() {
		for _, id := range roomIDs {
			if t.ClassroomID == id {
				tasks = append(tasks, t)
				break
			}
		}
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(t task.Task) (task.Task, error) {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	if _, ok := repo.tasks.table[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.tasks.table[t.ID] = &t
	return t, nil
}

// DeleteTasksByID cascades to the tasks' submissions.
func (repo *taskRepository) DeleteTasksByID(ids ...int) error {
	repo.tasks.Lock()
	defer repo.tasks.Unlock()

	for _, id := range ids {
		delete(repo.tasks.table, id)
	}

	repo.db.submission.Lock()
	for sid, sub := range repo.db.submission.table {
		for _, id := range ids {
			if sub.TaskID == id {
				delete(repo.db.submission.table, sid)
				break
			}
		}
	}
	repo.db.submission.Unlock()
	return nil
}

func (repo *taskRepository) CountTasks() (int, error) {
	repo.tasks.RLock()
	defer repo.tasks.RUnlock()
	return len(repo.tasks.table), nil
}
