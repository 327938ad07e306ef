package user

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/eaduck/eaduck/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	digitsRegex = regexp.MustCompile(`\d`)
)

// NameFromEmail derives a display name from the email's local part,
// with digits stripped out.
func NameFromEmail(email string) string {
	return digitsRegex.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
}

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(usr User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByEmail(email string) (User, error)
		FilterUsersByRole(role Role) ([]User, error)
		UpdateUser(usr User) (User, error)
		DeleteUsersByID(ids ...int) error
		CountUsers() (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
	}
}

func (svc *Service) checkUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new active account. Role defaults to STUDENT; a missing
// name is derived from the email local part.
func (svc *Service) Register(nu NewUser) (User, error) {
	role := nu.Role
	if role == "" {
		role = RoleStudent
	}
	name := nu.Name
	if name == "" {
		name = NameFromEmail(nu.Email)
	}

	now := time.Now().UTC()
	usr := User{
		Name:      name,
		Email:     nu.Email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true))
}

func (svc *Service) FilterByRole(role Role) ([]User, error) {
	return svc.repo.FilterUsersByRole(role)
}

// SetRole changes the target user's role. Access rules (admin-only,
// root-admin protection) are enforced by the caller via the access policy.
func (svc *Service) SetRole(id int, role Role) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

// SetStatus toggles the target user's active flag. Access rules are enforced
// by the caller via the access policy.
func (svc *Service) SetStatus(id int, isActive bool) (User, error) {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	usr.IsActive = isActive
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *Service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteUsersByID(ids...)
}

func (svc *Service) Count() (int, error) {
	return svc.repo.CountUsers()
}

// RequestPasswordReset emails a reset link to the account, if it exists.
func (svc *Service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

// ConfirmPasswordReset verifies the uid/token pair and sets the new password.
func (svc *Service) ConfirmPasswordReset(rp ResetPassword) (User, error) {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return User{}, core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *Service) sendPasswordResetMail(usr User) {
	token, err := MakeToken(usr)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("generating password reset token: %v", err), err)
		return
	}
	link := fmt.Sprintf("%s/confirm-reset-password?uid=%s&token=%s", core.Conf.FrontendBaseURL, EncodeUID(usr), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:     "Password reset",
		TextContent: fmt.Sprintf("Follow this link to reset your password: %s", link),
		HTMLContent: fmt.Sprintf(`<p>Follow this link to reset your password:</p><p><a href=%q>%s</a></p>`, link, link),
	})
}
