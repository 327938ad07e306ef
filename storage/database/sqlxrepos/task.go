package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/task"
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(t task.Task) (task.Task, error) {
	query := `
		INSERT INTO task (classroom_id, created_by_id, title, description, type, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.Get(
		&t.ID, query,
		t.ClassroomID, t.CreatedByID, t.Title, t.Description, t.Type, t.DueDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return t, nil
}

func (repo *taskRepository) QueryAllTasks() ([]task.Task, error) {
	var tasks []task.Task
	if err := repo.db.Select(&tasks, `SELECT * FROM task ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	return tasks, nil
}

func (repo *taskRepository) GetTaskByID(id int) (task.Task, error) {
	var t task.Task
	if err := repo.db.Get(&t, `SELECT * FROM task WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return t, nil
}

func (repo *taskRepository) QueryTasksByClassroomIDs(roomIDs ...int) ([]task.Task, error) {
	var tasks []task.Task
	query := `SELECT * FROM task WHERE classroom_id = ANY($1) ORDER BY id`
	if err := repo.db.Select(&tasks, query, pqIntArray(roomIDs)); err != nil {
		return nil, errors.Wrap(err, "querying tasks by classroom")
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(t task.Task) (task.Task, error) {
	query := `UPDATE task SET classroom_id = $1, title = $2, description = $3, type = $4, due_date = $5, updated_at = $6 WHERE id = $7`
	res, err := repo.db.Exec(query, t.ClassroomID, t.Title, t.Description, t.Type, t.DueDate, t.UpdatedAt, t.ID)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo *taskRepository) DeleteTasksByID(ids ...int) error {
	// submissions cascade via the schema
	if _, err := repo.db.Exec(`DELETE FROM task WHERE id = ANY($1)`, pqIntArray(ids)); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	return nil
}

func (repo *taskRepository) CountTasks() (int, error) {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM task`); err != nil {
		return 0, errors.Wrap(err, "counting tasks")
	}
	return count, nil
}
