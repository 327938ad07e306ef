package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaduck/eaduck/core"
)

func TestMakeToken(t *testing.T) {
	core.Conf = &core.Config{
		SecretKey:                 []byte("s3cr3t"),
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	usr := User{ID: 7, Name: "Awal", Email: "awal@test.cm", LastLogin: time.Now().UTC()}
	require.NoError(t, usr.SetPassword("LePassword#123"))

	usr2 := usr
	usr2.ID = 8
	require.NoError(t, usr2.SetPassword("Andere#Pass98"))

	token, err := MakeToken(usr)
	require.NoError(t, err)

	tests := []struct {
		name    string
		usr     User
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "valid", usr: usr, token: token},
		{name: "wrong user", usr: usr2, token: token, wantErr: errInvalidToken},
		{name: "garbage", usr: usr, token: "not-a-token", wantErr: errInvalidToken},
		{name: "no separator", usr: usr, token: "notatoken", wantErr: errInvalidToken},
		{name: "still valid a day later", usr: usr, token: token, now: time.Now().AddDate(0, 0, 1)},
		{name: "expired", usr: usr, token: token, now: time.Now().AddDate(0, 0, 4), wantErr: errTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nowFunc = time.Now
			if !tt.now.IsZero() {
				nowFunc = func() time.Time { return tt.now }
			}
			err := verifyToken(tt.usr, tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
	nowFunc = time.Now
}

func TestTokenInvalidatedByPasswordChange(t *testing.T) {
	core.Conf = &core.Config{
		SecretKey:                 []byte("s3cr3t"),
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}

	usr := User{ID: 3, Email: "mefire@test.cm", LastLogin: time.Now().UTC()}
	require.NoError(t, usr.SetPassword("LePassword#123"))

	token, err := MakeToken(usr)
	require.NoError(t, err)
	require.NoError(t, verifyToken(usr, token))

	require.NoError(t, usr.SetPassword("NewPassword#456"))
	assert.Equal(t, errInvalidToken, verifyToken(usr, token))
}
