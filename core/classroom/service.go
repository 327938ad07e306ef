package classroom

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/user"
)

var ErrNotFound = errors.New("classroom not found")

type (
	Repository interface {
		CreateClassroom(room Classroom) (Classroom, error)
		QueryAllClassrooms() ([]Classroom, error)
		GetClassroomByID(id int) (Classroom, error)
		QueryClassroomsByTeacherID(userID int) ([]Classroom, error)
		QueryClassroomsByStudentID(userID int) ([]Classroom, error)
		UpdateClassroom(room Classroom) (Classroom, error)
		DeleteClassroomsByID(ids ...int) error
		CountClassrooms() (int, error)
	}

	// Members groups a classroom's users by their role in it.
	Members struct {
		Teachers []user.User `json:"teachers"`
		Students []user.User `json:"students"`
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		logger  core.Logger
	}
)

func NewService(repo Repository, usrRepo user.Repository, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		usrRepo: usrRepo,
		logger:  logger,
	}
}

// Create persists a new classroom. A teacher creating one is enrolled in it;
// ids in TeacherIDs that do not belong to teachers are skipped.
func (svc *Service) Create(nc NewClassroom, creator user.User) (Classroom, error) {
	now := time.Now().UTC()
	room := Classroom{
		Name:         nc.Name,
		AcademicYear: nc.AcademicYear,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, id := range nc.TeacherIDs {
		usr, err := svc.usrRepo.GetUserByID(id)
		if err != nil || !usr.IsTeacher() {
			svc.logger.Info(fmt.Sprintf("skipping non-teacher user %d for classroom %q", id, nc.Name))
			continue
		}
		room.AddTeacher(id)
	}
	if creator.IsTeacher() {
		room.AddTeacher(creator.ID)
	}
	return svc.repo.CreateClassroom(room)
}

// QueryForUser returns the classrooms visible to usr: all of them for an
// admin, otherwise only the ones the user belongs to.
func (svc *Service) QueryForUser(usr user.User) ([]Classroom, error) {
	switch {
	case usr.IsAdmin():
		return svc.repo.QueryAllClassrooms()
	case usr.IsTeacher():
		return svc.repo.QueryClassroomsByTeacherID(usr.ID)
	default:
		return svc.repo.QueryClassroomsByStudentID(usr.ID)
	}
}

func (svc *Service) GetByID(id int) (Classroom, error) {
	return svc.repo.GetClassroomByID(id)
}

func (svc *Service) Update(id int, uc UpdateClassroom) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(id)
	if err != nil {
		return Classroom{}, err
	}
	if uc.Name != "" {
		room.Name = uc.Name
	}
	if uc.AcademicYear != "" {
		room.AcademicYear = uc.AcademicYear
	}
	room.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassroom(room)
}

// Delete removes classrooms along with their tasks and submissions.
func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteClassroomsByID(ids...)
}

func (svc *Service) Members(id int) (Members, error) {
	room, err := svc.repo.GetClassroomByID(id)
	if err != nil {
		return Members{}, err
	}
	members := Members{
		Teachers: make([]user.User, 0, len(room.TeacherIDs)),
		Students: make([]user.User, 0, len(room.StudentIDs)),
	}
	for _, uid := range room.TeacherIDs {
		usr, err := svc.usrRepo.GetUserByID(uid)
		if err != nil {
			continue
		}
		members.Teachers = append(members.Teachers, usr)
	}
	for _, uid := range room.StudentIDs {
		usr, err := svc.usrRepo.GetUserByID(uid)
		if err != nil {
			continue
		}
		members.Students = append(members.Students, usr)
	}
	return members, nil
}

// AddStudent enrolls a student. The target user must have the STUDENT role.
func (svc *Service) AddStudent(roomID, userID int) (Classroom, error) {
	return svc.addMember(roomID, userID, user.RoleStudent)
}

// AddTeacher assigns a teacher. The target user must have the TEACHER role.
func (svc *Service) AddTeacher(roomID, userID int) (Classroom, error) {
	return svc.addMember(roomID, userID, user.RoleTeacher)
}

func (svc *Service) addMember(roomID, userID int, role user.Role) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(roomID)
	if err != nil {
		return Classroom{}, err
	}
	usr, err := svc.usrRepo.GetUserByID(userID)
	if err != nil {
		return Classroom{}, err
	}
	if usr.Role != role {
		return Classroom{}, core.NewValidationError(
			fmt.Errorf("user %d does not have the %s role", userID, role))
	}
	if role == user.RoleTeacher {
		room.AddTeacher(userID)
	} else {
		room.AddStudent(userID)
	}
	room.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassroom(room)
}

func (svc *Service) RemoveStudent(roomID, userID int) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(roomID)
	if err != nil {
		return Classroom{}, err
	}
	room.RemoveStudent(userID)
	room.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassroom(room)
}

func (svc *Service) RemoveTeacher(roomID, userID int) (Classroom, error) {
	room, err := svc.repo.GetClassroomByID(roomID)
	if err != nil {
		return Classroom{}, err
	}
	room.RemoveTeacher(userID)
	room.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClassroom(room)
}

func (svc *Service) Count() (int, error) {
	return svc.repo.CountClassrooms()
}
