// Package dummydb provides in-memory repository implementations for tests.
package dummydb

import (
	"sync"

	"github.com/eaduck/eaduck/core/classroom"
	"github.com/eaduck/eaduck/core/message"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/submission"
	"github.com/eaduck/eaduck/core/task"
	"github.com/eaduck/eaduck/core/user"
)

type (
	DB struct {
		user         *userTable
		classroom    *classroomTable
		task         *taskTable
		submission   *submissionTable
		notification *notificationTable
		message      *messageTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	classroomTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*classroom.Classroom
	}

	taskTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*task.Task
	}

	submissionTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*submission.Submission
	}

	notificationTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*notification.Notification
	}

	messageTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*message.Message
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[int]*user.User)},
		classroom:    &classroomTable{table: make(map[int]*classroom.Classroom)},
		task:         &taskTable{table: make(map[int]*task.Task)},
		submission:   &submissionTable{table: make(map[int]*submission.Submission)},
		notification: &notificationTable{table: make(map[int]*notification.Notification)},
		message:      &messageTable{table: make(map[int]*message.Message)},
	}
	return db, nil
}
