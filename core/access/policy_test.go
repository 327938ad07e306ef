package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
)

const rootAdminID = 1

var (
	rootAdmin  = user.User{ID: rootAdminID, Role: user.RoleAdmin}
	otherAdmin = user.User{ID: 2, Role: user.RoleAdmin}
	teacher    = user.User{ID: 3, Role: user.RoleTeacher}
	teacher2   = user.User{ID: 4, Role: user.RoleTeacher}
	student    = user.User{ID: 5, Role: user.RoleStudent}
	student2   = user.User{ID: 6, Role: user.RoleStudent}

	room = classroom.Classroom{ID: 1, TeacherIDs: []int{teacher.ID}, StudentIDs: []int{student.ID}}
)

func TestCanManageUser(t *testing.T) {
	tests := []struct {
		name       string
		actor      user.User
		target     user.User
		want       bool
		wantReason Reason
	}{
		{"admin manages student", otherAdmin, student, true, ReasonAdmin},
		{"admin manages teacher", otherAdmin, teacher, true, ReasonAdmin},
		{"root admin manages admin", rootAdmin, otherAdmin, true, ReasonAdmin},
		{"admin cannot manage admin", otherAdmin, user.User{ID: 9, Role: user.RoleAdmin}, false, ReasonAdminProtected},
		{"nobody manages root admin", otherAdmin, rootAdmin, false, ReasonRootAdminImmutable},
		{"root admin cannot manage itself", rootAdmin, rootAdmin, false, ReasonRootAdminImmutable},
		{"teacher denied", teacher, student, false, ReasonRoleDenied},
		{"student denied", student, student2, false, ReasonRoleDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanManageUser(tt.actor, tt.target, rootAdminID)
			assert.Equal(t, tt.want, got.Allowed)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestClassroomPolicies(t *testing.T) {
	t.Run("view", func(t *testing.T) {
		assert.True(t, CanViewClassroom(otherAdmin, room).Allowed)
		assert.True(t, CanViewClassroom(teacher, room).Allowed)
		assert.True(t, CanViewClassroom(student, room).Allowed)
		got := CanViewClassroom(student2, room)
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonNotClassroomMember, got.Reason)
	})

	t.Run("create", func(t *testing.T) {
		assert.True(t, CanCreateClassroom(otherAdmin).Allowed)
		assert.True(t, CanCreateClassroom(teacher).Allowed)
		assert.False(t, CanCreateClassroom(student).Allowed)
	})

	t.Run("update requires teaching the room", func(t *testing.T) {
		assert.True(t, CanUpdateClassroom(teacher, room).Allowed)
		got := CanUpdateClassroom(teacher2, room)
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonNotClassroomTeacher, got.Reason)
	})

	t.Run("delete is admin only", func(t *testing.T) {
		assert.True(t, CanDeleteClassroom(otherAdmin).Allowed)
		assert.False(t, CanDeleteClassroom(teacher).Allowed)
	})

	t.Run("teacher assignment is admin only", func(t *testing.T) {
		assert.True(t, CanAssignClassroomTeachers(otherAdmin).Allowed)
		assert.False(t, CanAssignClassroomTeachers(teacher).Allowed)
	})

	t.Run("student management", func(t *testing.T) {
		assert.True(t, CanManageClassroomStudents(teacher, room).Allowed)
		assert.False(t, CanManageClassroomStudents(teacher2, room).Allowed)
		assert.False(t, CanManageClassroomStudents(student, room).Allowed)
	})
}

func TestTaskPolicies(t *testing.T) {
	t.Run("create and edit require teaching the room", func(t *testing.T) {
		assert.True(t, CanCreateTask(teacher, room).Allowed)
		assert.True(t, CanCreateTask(otherAdmin, room).Allowed)
		assert.False(t, CanCreateTask(teacher2, room).Allowed)
		assert.False(t, CanEditTask(student, room).Allowed)
	})

	t.Run("members can view", func(t *testing.T) {
		assert.True(t, CanViewTask(student, room).Allowed)
		assert.False(t, CanViewTask(student2, room).Allowed)
	})
}

func TestSubmissionPolicies(t *testing.T) {
	t.Run("submit requires an enrolled student", func(t *testing.T) {
		assert.True(t, CanSubmit(student, room).Allowed)

		got := CanSubmit(student2, room)
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonNotClassroomMember, got.Reason)

		got = CanSubmit(teacher, room)
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonRoleDenied, got.Reason)
	})

	t.Run("evaluation requires teaching the room", func(t *testing.T) {
		assert.True(t, CanEvaluateSubmission(teacher, room).Allowed)
		assert.False(t, CanEvaluateSubmission(teacher2, room).Allowed)
	})

	t.Run("student ledgers", func(t *testing.T) {
		rooms := []classroom.Classroom{room}
		assert.True(t, CanViewStudentSubmissions(student, student.ID, rooms).Allowed)
		assert.True(t, CanViewStudentSubmissions(otherAdmin, student.ID, rooms).Allowed)
		assert.True(t, CanViewStudentSubmissions(teacher, student.ID, rooms).Allowed)
		assert.False(t, CanViewStudentSubmissions(student2, student.ID, rooms).Allowed)

		got := CanViewStudentSubmissions(teacher2, student.ID, rooms)
		assert.False(t, got.Allowed)
		assert.Equal(t, ReasonNotClassroomTeacher, got.Reason)
	})
}

func TestNotificationPolicies(t *testing.T) {
	notif := notification.Notification{ID: 1, UserID: student.ID}
	assert.True(t, CanMarkNotificationRead(student, notif).Allowed)
	assert.True(t, CanMarkNotificationRead(otherAdmin, notif).Allowed)
	assert.False(t, CanMarkNotificationRead(student2, notif).Allowed)

	assert.True(t, CanNotify(teacher).Allowed)
	assert.True(t, CanNotify(otherAdmin).Allowed)
	assert.False(t, CanNotify(student).Allowed)
}
