package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	msgsvc "github.com/eaduck/eaduck/core/message"
	"github.com/eaduck/eaduck/core/notification"
	"github.com/eaduck/eaduck/core/user"
)

func TestMessaging(t *testing.T) {
	teacher := createUser(t, "msg_teacher", user.RoleTeacher)
	alice := createUser(t, "msg_alice", user.RoleStudent)
	teacherToken := getToken(t, teacher)
	aliceToken := getToken(t, alice)

	rec := do(t, http.MethodPost, "/v1/messages", teacherToken, map[string]interface{}{
		"recipient_id": alice.ID,
		"content":      "Please redo exercise 4.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var msg msgsvc.Message
	decode(t, rec, &msg)
	assert.Equal(t, teacher.ID, msg.SenderID)
	assert.False(t, msg.IsRead)

	// messaging a ghost fails
	rec = do(t, http.MethodPost, "/v1/messages", teacherToken, map[string]interface{}{
		"recipient_id": 999999, "content": "Anyone there?",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the recipient was alerted in-app
	notifs, err := notifRepo.QueryNotificationsByUserID(alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notifs)
	assert.Equal(t, notification.TypeSystem, notifs[len(notifs)-1].Type)
	assert.Contains(t, notifs[len(notifs)-1].Title, teacher.Name)

	// sent and received boxes line up
	rec = do(t, http.MethodGet, "/v1/messages/sent", teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sent []msgsvc.Message
	decode(t, rec, &sent)
	require.Len(t, sent, 1)

	rec = do(t, http.MethodGet, "/v1/messages/received", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var received []msgsvc.Message
	decode(t, rec, &received)
	require.Len(t, received, 1)
	assert.Equal(t, msg.ID, received[0].ID)

	// only the recipient can mark it read
	rec = do(t, http.MethodPut, "/v1/messages/"+itoa(msg.ID)+"/read", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, http.MethodPut, "/v1/messages/"+itoa(msg.ID)+"/read", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &msg)
	assert.True(t, msg.IsRead)
}

func TestSearch(t *testing.T) {
	teacher := createUser(t, "srch_teacher", user.RoleTeacher)

	rec := do(t, http.MethodPost, "/v1/classrooms", getToken(t, teacher), map[string]string{
		"name": "Biology srchlab", "academic_year": "2020-2021",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, http.MethodGet, "/v1/search?q=srchlab", getToken(t, teacher), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var results struct {
		Users      []user.User              `json:"users"`
		Classrooms []map[string]interface{} `json:"classrooms"`
	}
	decode(t, rec, &results)
	require.Len(t, results.Classrooms, 1)
	// non-admins never see accounts in search results
	assert.Empty(t, results.Users)

	// a blank query returns nothing
	rec = do(t, http.MethodGet, "/v1/search", getToken(t, teacher), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &results)
	assert.Empty(t, results.Classrooms)
}
