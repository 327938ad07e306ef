// Package access holds the authorization rules as pure functions over the
// domain models. Handlers ask it for a Decision and translate denials into
// HTTP 403s; nothing here touches storage or the network.
package access

import (
	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
)

// Reason explains a Decision in a machine-readable way.
type Reason string

const (
	ReasonAllowed             Reason = "allowed"
	ReasonAdmin               Reason = "admin"
	ReasonOwner               Reason = "owner"
	ReasonRoleDenied          Reason = "role_denied"
	ReasonNotClassroomTeacher Reason = "not_classroom_teacher"
	ReasonNotClassroomMember  Reason = "not_classroom_member"
	ReasonAdminProtected      Reason = "admin_target_protected"
	ReasonRootAdminImmutable  Reason = "root_admin_immutable"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow(r Reason) Decision { return Decision{Allowed: true, Reason: r} }
func deny(r Reason) Decision  { return Decision{Allowed: false, Reason: r} }

// CanManageUser decides whether actor may change target's role or status.
// The root admin account cannot be modified by anyone, itself included, and
// other admin accounts only by the root admin.
func CanManageUser(actor, target user.User, rootAdminID int) Decision {
	if target.ID == rootAdminID {
		return deny(ReasonRootAdminImmutable)
	}
	if !actor.IsAdmin() {
		return deny(ReasonRoleDenied)
	}
	if target.IsAdmin() && actor.ID != rootAdminID {
		return deny(ReasonAdminProtected)
	}
	return allow(ReasonAdmin)
}

func CanViewClassroom(actor user.User, room classroom.Classroom) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if room.IsMember(actor.ID) {
		return allow(ReasonAllowed)
	}
	return deny(ReasonNotClassroomMember)
}

func CanCreateClassroom(actor user.User) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if actor.IsTeacher() {
		return allow(ReasonAllowed)
	}
	return deny(ReasonRoleDenied)
}

func CanUpdateClassroom(actor user.User, room classroom.Classroom) Decision {
	return teacherOfRoom(actor, room)
}

func CanDeleteClassroom(actor user.User) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	return deny(ReasonRoleDenied)
}

// CanManageClassroomStudents covers enrolling and removing students.
func CanManageClassroomStudents(actor user.User, room classroom.Classroom) Decision {
	return teacherOfRoom(actor, room)
}

// CanAssignClassroomTeachers covers assigning and removing teachers.
func CanAssignClassroomTeachers(actor user.User) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	return deny(ReasonRoleDenied)
}

func CanCreateTask(actor user.User, room classroom.Classroom) Decision {
	return teacherOfRoom(actor, room)
}

func CanViewTask(actor user.User, room classroom.Classroom) Decision {
	return CanViewClassroom(actor, room)
}

// CanEditTask covers both updating and deleting a task.
func CanEditTask(actor user.User, room classroom.Classroom) Decision {
	return teacherOfRoom(actor, room)
}

// CanSubmit requires a student enrolled in the task's classroom.
func CanSubmit(actor user.User, room classroom.Classroom) Decision {
	if !actor.IsStudent() {
		return deny(ReasonRoleDenied)
	}
	if !room.HasStudent(actor.ID) {
		return deny(ReasonNotClassroomMember)
	}
	return allow(ReasonAllowed)
}

func CanViewTaskSubmissions(actor user.User, room classroom.Classroom) Decision {
	return teacherOfRoom(actor, room)
}

func CanEvaluateSubmission(actor user.User, room classroom.Classroom) Decision {
	return teacherOfRoom(actor, room)
}

// CanViewStudentSubmissions lets a student see their own ledger, teachers
// see the ledgers of students they teach, and admins see anyone's.
func CanViewStudentSubmissions(actor user.User, studentID int, studentRooms []classroom.Classroom) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if actor.ID == studentID {
		return allow(ReasonOwner)
	}
	if actor.IsTeacher() {
		for _, room := range studentRooms {
			if room.HasTeacher(actor.ID) {
				return allow(ReasonAllowed)
			}
		}
		return deny(ReasonNotClassroomTeacher)
	}
	return deny(ReasonRoleDenied)
}

func CanMarkNotificationRead(actor user.User, notif notification.Notification) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if notif.UserID == actor.ID {
		return allow(ReasonOwner)
	}
	return deny(ReasonRoleDenied)
}

// CanNotify covers sending arbitrary notifications outside the task and
// submission flows.
func CanNotify(actor user.User) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if actor.IsTeacher() {
		return allow(ReasonAllowed)
	}
	return deny(ReasonRoleDenied)
}

func teacherOfRoom(actor user.User, room classroom.Classroom) Decision {
	if actor.IsAdmin() {
		return allow(ReasonAdmin)
	}
	if !actor.IsTeacher() {
		return deny(ReasonRoleDenied)
	}
	if !room.HasTeacher(actor.ID) {
		return deny(ReasonNotClassroomTeacher)
	}
	return allow(ReasonAllowed)
}
