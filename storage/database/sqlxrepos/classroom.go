package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core/classroom"
)

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) classroom.Repository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClassroom(room classroom.Classroom) (classroom.Classroom, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "creating classroom")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO classroom (name, academic_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err = tx.Get(&room.ID, query, room.Name, room.AcademicYear, room.CreatedAt, room.UpdatedAt); err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "creating classroom")
	}
	if err = saveMembers(tx, room); err != nil {
		return classroom.Classroom{}, err
	}
	if err = tx.Commit(); err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "creating classroom")
	}
	return room, nil
}

func (repo *classroomRepository) QueryAllClassrooms() ([]classroom.Classroom, error) {
	var rooms []classroom.Classroom
	if err := repo.db.Select(&rooms, `SELECT * FROM classroom ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying classrooms")
	}
	return repo.loadMembers(rooms)
}

func (repo *classroomRepository) GetClassroomByID(id int) (classroom.Classroom, error) {
	var room classroom.Classroom
	if err := repo.db.Get(&room, `SELECT * FROM classroom WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return classroom.Classroom{}, classroom.ErrNotFound
		}
		return classroom.Classroom{}, errors.Wrap(err, "getting classroom")
	}
	rooms, err := repo.loadMembers([]classroom.Classroom{room})
	if err != nil {
		return classroom.Classroom{}, err
	}
	return rooms[0], nil
}

func (repo *classroomRepository) QueryClassroomsByTeacherID(userID int) ([]classroom.Classroom, error) {
	return repo.queryByMember("classroom_teacher", userID)
}

func (repo *classroomRepository) QueryClassroomsByStudentID(userID int) ([]classroom.Classroom, error) {
	return repo.queryByMember("classroom_student", userID)
}

func (repo *classroomRepository) queryByMember(joinTable string, userID int) ([]classroom.Classroom, error) {
	var rooms []classroom.Classroom
	query := `
		SELECT c.* FROM classroom c
		JOIN ` + joinTable + ` m ON m.classroom_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.id`
	if err := repo.db.Select(&rooms, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying classrooms by member")
	}
	return repo.loadMembers(rooms)
}

func (repo *classroomRepository) UpdateClassroom(room classroom.Classroom) (classroom.Classroom, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE classroom SET name = $1, academic_year = $2, updated_at = $3 WHERE id = $4`
	res, err := tx.Exec(query, room.Name, room.AcademicYear, room.UpdatedAt, room.ID)
	if err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return classroom.Classroom{}, classroom.ErrNotFound
	}

	// replace memberships wholesale; the sets are small
	if _, err = tx.Exec(`DELETE FROM classroom_teacher WHERE classroom_id = $1`, room.ID); err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "updating classroom teachers")
	}
	if _, err = tx.Exec(`DELETE FROM classroom_student WHERE classroom_id = $1`, room.ID); err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "updating classroom students")
	}
	if err = saveMembers(tx, room); err != nil {
		return classroom.Classroom{}, err
	}
	if err = tx.Commit(); err != nil {
		return classroom.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	return room, nil
}

func (repo *classroomRepository) DeleteClassroomsByID(ids ...int) error {
	// tasks and submissions cascade via the schema
	if _, err := repo.db.Exec(`DELETE FROM classroom WHERE id = ANY($1)`, pqIntArray(ids)); err != nil {
		return errors.Wrap(err, "deleting classrooms")
	}
	return nil
}

func (repo *classroomRepository) CountClassrooms() (int, error) {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM classroom`); err != nil {
		return 0, errors.Wrap(err, "counting classrooms")
	}
	return count, nil
}

func saveMembers(tx *sqlx.Tx, room classroom.Classroom) error {
	for _, uid := range room.TeacherIDs {
		if _, err := tx.Exec(
			`INSERT INTO classroom_teacher (classroom_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			room.ID, uid,
		); err != nil {
			return errors.Wrap(err, "saving classroom teachers")
		}
	}
	for _, uid := range room.StudentIDs {
		if _, err := tx.Exec(
			`INSERT INTO classroom_student (classroom_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			room.ID, uid,
		); err != nil {
			return errors.Wrap(err, "saving classroom students")
		}
	}
	return nil
}

func (repo *classroomRepository) loadMembers(rooms []classroom.Classroom) ([]classroom.Classroom, error) {
	type member struct {
		ClassroomID int `db:"classroom_id"`
		UserID      int `db:"user_id"`
	}
	for i := range rooms {
		var teachers, students []member
		if err := repo.db.Select(&teachers,
			`SELECT classroom_id, user_id FROM classroom_teacher WHERE classroom_id = $1 ORDER BY user_id`,
			rooms[i].ID,
		); err != nil {
			return nil, errors.Wrap(err, "loading classroom teachers")
		}
		if err := repo.db.Select(&students,
			`SELECT classroom_id, user_id FROM classroom_student WHERE classroom_id = $1 ORDER BY user_id`,
			rooms[i].ID,
		); err != nil {
			return nil, errors.Wrap(err, "loading classroom students")
		}
		for _, m := range teachers {
			rooms[i].TeacherIDs = append(rooms[i].TeacherIDs, m.UserID)
		}
		for _, m := range students {
			rooms[i].StudentIDs = append(rooms[i].StudentIDs, m.UserID)
		}
	}
	return rooms, nil
}
