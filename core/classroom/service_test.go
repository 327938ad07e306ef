package classroom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaduck/eaduck/core"
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
	logsvc "github.com/eaduck/eaduck/services/logger"
	dummydb "github.com/eaduck/eaduck/storage/database/dummy"
)

type testEnv struct {
	usrRepo  user.Repository
	roomRepo classroom.Repository
	taskRepo task.Repository
	subRepo  submission.Repository
	roomSvc  *classroom.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	core.Conf = &core.Config{TestMode: true, AppName: "EaDuck", RootAdminID: 1}

	db, err := dummydb.Open()
	require.NoError(t, err)

	env := &testEnv{
		usrRepo:  dummydb.NewUserRepository(db),
		roomRepo: dummydb.NewClassroomRepository(db),
		taskRepo: dummydb.NewTaskRepository(db),
		subRepo:  dummydb.NewSubmissionRepository(db),
	}
	env.roomSvc = classroom.NewService(env.roomRepo, env.usrRepo, logsvc.NewStdLogger(nil))
	return env
}

func (env *testEnv) createUser(t *testing.T, name string, role user.Role) user.User {
	t.Helper()
	usr, err := env.usrRepo.CreateUser(user.User{
		Name:     name,
		Email:    name + "@eaduck.test",
		Role:     role,
		IsActive: true,
	})
	require.NoError(t, err)
	return usr
}

func TestClassroomCreate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", user.RoleAdmin)
	teacher := env.createUser(t, "teacher", user.RoleTeacher)
	student := env.createUser(t, "student", user.RoleStudent)

	t.Run("teacher creator is enrolled", func(t *testing.T) {
		room, err := env.roomSvc.Create(classroom.NewClassroom{Name: "6th Grade A", AcademicYear: "2020-2021"}, teacher)
		require.NoError(t, err)
		assert.True(t, room.HasTeacher(teacher.ID))
	})

	t.Run("admin creator is not enrolled", func(t *testing.T) {
		room, err := env.roomSvc.Create(classroom.NewClassroom{Name: "6th Grade B", AcademicYear: "2020-2021"}, admin)
		require.NoError(t, err)
		assert.Empty(t, room.TeacherIDs)
	})

	t.Run("non-teacher ids are skipped", func(t *testing.T) {
		room, err := env.roomSvc.Create(classroom.NewClassroom{
			Name:         "6th Grade C",
			AcademicYear: "2020-2021",
			TeacherIDs:   []int{teacher.ID, student.ID, 404},
		}, admin)
		require.NoError(t, err)
		assert.Equal(t, []int{teacher.ID}, room.TeacherIDs)
	})
}

func TestNewClassroomValidateAcademicYear(t *testing.T) {
	tests := []struct {
		year    string
		wantErr bool
	}{
		{year: "2020-2021"},
		{year: "2099-2100"},
		{year: "2020-2022", wantErr: true},
		{year: "2021-2020", wantErr: true},
		{year: "1899-1900", wantErr: true},
		{year: "2100-2101", wantErr: true},
		{year: "20-21", wantErr: true},
		{year: "whenever", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			nc := classroom.NewClassroom{Name: "6th Grade A", AcademicYear: tt.year}
			err := nc.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClassroomMembership(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", user.RoleAdmin)
	teacher := env.createUser(t, "teacher", user.RoleTeacher)
	alice := env.createUser(t, "alice", user.RoleStudent)

	room, err := env.roomSvc.Create(classroom.NewClassroom{Name: "6th Grade A", AcademicYear: "2020-2021"}, teacher)
	require.NoError(t, err)

	room, err = env.roomSvc.AddStudent(room.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, room.HasStudent(alice.ID))

	// enrolling twice is a no-op
	room, err = env.roomSvc.AddStudent(room.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{alice.ID}, room.StudentIDs)

	// role mismatches are rejected
	var vErr *core.ValidationError
	_, err = env.roomSvc.AddStudent(room.ID, teacher.ID)
	require.ErrorAs(t, err, &vErr)
	_, err = env.roomSvc.AddTeacher(room.ID, admin.ID)
	require.ErrorAs(t, err, &vErr)

	_, err = env.roomSvc.AddStudent(room.ID, 404)
	assert.Equal(t, user.ErrNotFound, err)

	room, err = env.roomSvc.RemoveStudent(room.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, room.HasStudent(alice.ID))

	members, err := env.roomSvc.Members(room.ID)
	require.NoError(t, err)
	require.Len(t, members.Teachers, 1)
	assert.Equal(t, teacher.ID, members.Teachers[0].ID)
	assert.Empty(t, members.Students)
}

func TestClassroomQueryForUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", user.RoleAdmin)
	teacher := env.createUser(t, "teacher", user.RoleTeacher)
	alice := env.createUser(t, "alice", user.RoleStudent)

	room, err := env.roomSvc.Create(classroom.NewClassroom{Name: "6th Grade A", AcademicYear: "2020-2021"}, teacher)
	require.NoError(t, err)
	_, err = env.roomSvc.Create(classroom.NewClassroom{Name: "6th Grade B", AcademicYear: "2020-2021"}, admin)
	require.NoError(t, err)
	_, err = env.roomSvc.AddStudent(room.ID, alice.ID)
	require.NoError(t, err)

	all, err := env.roomSvc.QueryForUser(admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	for _, usr := range []user.User{teacher, alice} {
		rooms, err := env.roomSvc.QueryForUser(usr)
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, room.ID, rooms[0].ID)
	}
}

func TestClassroomDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", user.RoleTeacher)
	alice := env.createUser(t, "alice", user.RoleStudent)

	room, err := env.roomSvc.Create(classroom.NewClassroom{Name: "6th Grade A", AcademicYear: "2020-2021"}, teacher)
	require.NoError(t, err)
	tsk, err := env.taskRepo.CreateTask(task.Task{ClassroomID: room.ID, CreatedByID: teacher.ID, Title: "Essay"})
	require.NoError(t, err)
	_, err = env.subRepo.CreateSubmission(submission.Submission{TaskID: tsk.ID, StudentID: alice.ID, Content: "done"})
	require.NoError(t, err)

	require.NoError(t, env.roomSvc.Delete(room.ID))

	_, err = env.roomRepo.GetClassroomByID(room.ID)
	assert.Equal(t, classroom.ErrNotFound, err)
	_, err = env.taskRepo.GetTaskByID(tsk.ID)
	assert.Equal(t, task.ErrNotFound, err)
	subs, err := env.subRepo.QuerySubmissionsByTaskID(tsk.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
