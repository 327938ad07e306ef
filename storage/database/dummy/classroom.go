package dummydb

import (
	"sort"

	"github.com/eaduck/eaduck/core/classroom"
)

type classroomRepository struct {
	db    *DB
	rooms *classroomTable
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{db: db, rooms: db.classroom}
}

// copyClassroom deep-copies the membership slices so callers cannot mutate
// stored state through returned values.
func copyClassroom(room classroom.Classroom) classroom.Classroom {
	room.TeacherIDs = append([]int(nil), room.TeacherIDs...)
	room.StudentIDs = append([]int(nil), room.StudentIDs...)
	return room
}

func (repo *classroomRepository) query() []classroom.Classroom {
	rooms := make([]classroom.Classroom, 0, len(repo.rooms.table))
	for _, room := range repo.rooms.table {
		rooms = append(rooms, copyClassroom(*room))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

func (repo *classroomRepository) CreateClassroom(room classroom.Classroom) (classroom.Classroom, error) {
	repo.rooms.Lock()
	defer repo.rooms.Unlock()

	repo.rooms.pkCount++
	room.ID = repo.rooms.pkCount
	stored := copyClassroom(room)
	repo.rooms.table[room.ID] = &stored
	return room, nil
}

func (repo *classroomRepository) QueryAllClassrooms() ([]classroom.Classroom, error) {
	repo.rooms.RLock()
	defer repo.rooms.RUnlock()
	return repo.query(), nil
}

func (repo *classroomRepository) GetClassroomByID(id int) (classroom.Classroom, error) {
	repo.rooms.RLock()
	defer repo.rooms.RUnlock()

	if room, ok := repo.rooms.table[id]; ok {
		return copyClassroom(*room), nil
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) QueryClassroomsByTeacherID(userID int) ([]classroom.Classroom, error) {
	repo.rooms.RLock()
	defer repo.rooms.RUnlock()

	var rooms []classroom.Classroom
	for _, room := range repo.query() {
		if room.HasTeacher(userID) {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (repo *classroomRepository) QueryClassroomsByStudentID(userID int) ([]classroom.Classroom, error) {
	repo.rooms.RLock()
	defer repo.rooms.RUnlock()

	var rooms []classroom.Classroom
	for _, room := range repo.query() {
		if room.HasStudent(userID) {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (repo *classroomRepository) UpdateClassroom(room classroom.Classroom) (classroom.Classroom, error) {
	repo.rooms.Lock()
	defer repo.rooms.Unlock()

	if _, ok := repo.rooms.table[room.ID]; !ok {
		return classroom.Classroom{}, classroom.ErrNotFound
	}
	stored := copyClassroom(room)
	repo.rooms.table[room.ID] = &stored
	return room, nil
}

// DeleteClassroomsByID cascades to the classrooms' tasks and their submissions.
func (repo *classroomRepository) DeleteClassroomsByID(ids ...int) error {
	repo.rooms.Lock()
	defer repo.rooms.Unlock()

	for _, id := range ids {
		delete(repo.rooms.table, id)
	}

	repo.db.task.Lock()
	var taskIDs []int
	for tid, t := range repo.db.task.table {
		for _, id := range ids {
			if t.ClassroomID == id {
				taskIDs = append(taskIDs, tid)
				delete(repo.db.task.table, tid)
				break
			}
		}
	}
	repo.db.task.Unlock()

	repo.db.submission.Lock()
	for sid, sub := range repo.db.submission.table {
		for _, tid := range taskIDs {
			if sub.TaskID == tid {
				delete(repo.db.submission.table, sid)
				break
			}
		}
	}
	repo.db.submission.Unlock()
	return nil
}

func (repo *classroomRepository) CountClassrooms() (int, error) {
	repo.rooms.RLock()
	defer repo.rooms.RUnlock()
	return len(repo.rooms.table), nil
}
