package auth

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleParent}

	ErrInvalidToken = errors.New("invalid token")
)

// Session is the logged in user as known by the client. It lives in the auth slice
// and, as a core.Credential, in the TokenStore.
type Session struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

func (s Session) IsAdmin() bool   { return s.Role == RoleAdmin }
func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }
func (s Session) IsParent() bool  { return s.Role == RoleParent }

// String never includes the token.
func (s Session) String() string {
	return core.FullName(core.OrNA(s.Name), "("+core.OrNA(s.Role)+")")
}

func (s Session) credential() core.Credential {
	return core.Credential{Token: s.Token, Role: s.Role, Name: s.Name, Email: s.Email, UserID: s.UserID}
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// LoginResponse is the body of a successful login. The backend may nest the user.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	User  struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Role      string `json:"role"`
	} `json:"user"`
}

func (lr LoginResponse) session() Session {
	sess := Session{
		Token:  lr.Token,
		Role:   firstNonBlank(lr.Role, lr.User.Role),
		Name:   firstNonBlank(lr.Name, lr.User.Name, core.FullName(lr.User.FirstName, lr.User.LastName)),
		Email:  lr.User.Email,
		UserID: lr.User.ID,
	}
	if claimed, err := SessionFromToken(lr.Token); err == nil {
		sess.Role = firstNonBlank(sess.Role, claimed.Role)
		sess.Name = firstNonBlank(sess.Name, claimed.Name)
		sess.Email = firstNonBlank(sess.Email, claimed.Email)
		sess.UserID = firstNonBlank(sess.UserID, claimed.UserID)
	}
	sess.Role = strings.ToLower(sess.Role)
	return sess
}

// sessionFromCredential rebuilds the session stored at login. The token is opaque: its claims
// are only read when the credential carries no role (a bare token).
func sessionFromCredential(cred core.Credential) (Session, error) {
	if cred.Token == "" {
		return Session{}, core.ErrNoToken
	}
	if strings.TrimSpace(cred.Role) == "" {
		return SessionFromToken(cred.Token)
	}
	return Session{
		Token:  cred.Token,
		Role:   strings.ToLower(strings.TrimSpace(cred.Role)),
		Name:   cred.Name,
		Email:  cred.Email,
		UserID: cred.UserID,
	}, nil
}

// SessionFromToken reads the session out of the token's claims.
// The signature is not verified: only the backend can do that.
func SessionFromToken(token string) (Session, error) {
	if token == "" {
		return Session{}, core.ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return Session{}, errors.Wrap(ErrInvalidToken, err.Error())
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := claims[k].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
	return Session{
		Token:  token,
		Role:   strings.ToLower(str("role")),
		Name:   firstNonBlank(str("name"), core.FullName(str("firstName"), str("lastName"))),
		Email:  str("email"),
		UserID: str("id", "_id", "sub"),
	}, nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
