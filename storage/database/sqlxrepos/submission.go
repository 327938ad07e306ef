package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/submission"
)

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) CreateSubmission(sub submission.Submission) (submission.Submission, error) {
	query := `
		INSERT INTO submission (task_id, student_id, content, file_url, grade, feedback, evaluated_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := repo.db.Get(
		&sub.ID, query,
		sub.TaskID, sub.StudentID, sub.Content, sub.FileURL, sub.Grade, sub.Feedback, sub.EvaluatedAt, sub.SubmittedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return submission.Submission{}, submission.ErrDuplicate
		}
		return submission.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (repo *submissionRepository) GetSubmissionByID(id int) (submission.Submission, error) {
	var sub submission.Submission
	if err := repo.db.Get(&sub, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "getting submission")
	}
	return sub, nil
}

func (repo *submissionRepository) GetSubmissionByTaskAndStudent(taskID, studentID int) (submission.Submission, error) {
	var sub submission.Submission
	query := `SELECT * FROM submission WHERE task_id = $1 AND student_id = $2`
	if err := repo.db.Get(&sub, query, taskID, studentID); err != nil {
		if isNoRows(err) {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "getting submission")
	}
	return sub, nil
}

func (repo *submissionRepository) QuerySubmissionsByTaskID(taskID int) ([]submission.Submission, error) {
	var subs []submission.Submission
	query := `SELECT * FROM submission WHERE task_id = $1 ORDER BY id`
	if err := repo.db.Select(&subs, query, taskID); err != nil {
		return nil, errors.Wrap(err, "querying submissions by task")
	}
	return subs, nil
}

func (repo *submissionRepository) QuerySubmissionsByStudentID(studentID int) ([]submission.Submission, error) {
	var subs []submission.Submission
	query := `SELECT * FROM submission WHERE student_id = $1 ORDER BY id`
	if err := repo.db.Select(&subs, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions by student")
	}
	return subs, nil
}

func (repo *submissionRepository) ExistsForTask(taskID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM submission WHERE task_id = $1)`
	if err := repo.db.Get(&exists, query, taskID); err != nil {
		return false, errors.Wrap(err, "checking submissions for task")
	}
	return exists, nil
}

func (repo *submissionRepository) ExistsForTaskAndStudent(taskID, studentID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM submission WHERE task_id = $1 AND student_id = $2)`
	if err := repo.db.Get(&exists, query, taskID, studentID); err != nil {
		return false, errors.Wrap(err, "checking submission for student")
	}
	return exists, nil
}

func (repo *submissionRepository) UpdateSubmission(sub submission.Submission) (submission.Submission, error) {
	query := `
		UPDATE submission
		SET content = $1, file_url = $2, grade = $3, feedback = $4, evaluated_at = $5
		WHERE id = $6`
	res, err := repo.db.Exec(query, sub.Content, sub.FileURL, sub.Grade, sub.Feedback, sub.EvaluatedAt, sub.ID)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	return sub, nil
}

func (repo *submissionRepository) CountSubmissions() (int, error) {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM submission`); err != nil {
		return 0, errors.Wrap(err, "counting submissions")
	}
	return count, nil
}
