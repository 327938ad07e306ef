package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core"
)

// Timestamped HMAC tokens for password reset. A token is bound to the user's
// current password hash and last login, so it self-invalidates once used.

var (
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")

	// mockable in tests
	nowFunc = time.Now
)

const keySalt = "github.com/eaduck/eaduck/core/user.tokenGenerator"

// EncodeUID encodes the user's pk for use in password reset URLs.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(usr.ID)))
}

func decodeUID(uid string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, errors.Wrap(err, "decoding uid")
	}
	id, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, errors.Wrap(err, "parsing uid")
	}
	return id, nil
}

// MakeToken generates a token that can be used once to reset the user's password.
func MakeToken(usr User) (string, error) {
	return makeTokenWithTimestamp(usr, numDays(nowFunc()))
}

func verifyToken(usr User, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if len(parts) != 2 {
		return errInvalidToken
	}
	ts, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil {
		return errInvalidToken
	}

	expected, err := makeTokenWithTimestamp(usr, int(ts))
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return errInvalidToken
	}

	maxDays := int(core.Conf.PasswordResetTimeoutDelta / (24 * time.Hour))
	if numDays(nowFunc())-int(ts) > maxDays {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(usr User, ts int) (string, error) {
	hash, err := signedHash(usr, ts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", strconv.FormatInt(int64(ts), 36), hash), nil
}

func signedHash(usr User, ts int) (string, error) {
	key := sha256.Sum256(append([]byte(keySalt), core.Conf.SecretKey...))
	mac := hmac.New(sha256.New, key[:])
	value := fmt.Sprintf("%d%s%s%d%s", usr.ID, usr.PasswordHash, usr.LastLogin.UTC().Format(time.RFC3339), ts, usr.Email)
	if _, err := mac.Write([]byte(value)); err != nil {
		return "", errors.Wrap(err, "writing hmac value")
	}
	hash := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	// keep every 2nd character to shorten the token
	short := make([]byte, 0, len(hash)/2)
	for i := 0; i < len(hash); i += 2 {
		short = append(short, hash[i])
	}
	return string(short), nil
}

// numDays counts days since 2001-01-01.
func numDays(t time.Time) int {
	epoch := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	return int(t.UTC().Sub(epoch) / (24 * time.Hour))
}
