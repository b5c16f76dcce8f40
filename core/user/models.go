package user

import (
	"fmt"
	"strings"

	"github.com/sarvodaya/feedesk/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

// AdminUsername is the single provisioned administrator account.
const AdminUsername = "admin"

// Account is an entry of the credential table, keyed by username.
type Account struct {
	Password string `json:"password"`
	Role     string `json:"role"`
	Class    string `json:"class,omitempty"`
	Division string `json:"division,omitempty"`
}

// Accounts is the credential table: username -> Account.
type Accounts map[string]Account

// User is the session snapshot of an authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Class    string `json:"class,omitempty"`
	Division string `json:"division,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// CanAccess reports whether the user may see records of the given class & division.
// Admins see everything, teachers only their own class-division.
func (u User) CanAccess(class, division string) bool {
	if u.IsAdmin() {
		return true
	}
	return u.IsTeacher() && u.Class == class && u.Division == division
}

func newUser(username string, acc Account) User {
	return User{
		ID:       username,
		Username: username,
		Role:     acc.Role,
		Class:    acc.Class,
		Division: acc.Division,
	}
}

// TeacherUsername returns the provisioned teacher account name for a class-division, eg. class1a.
func TeacherUsername(class, division string) string {
	return fmt.Sprintf("class%s%s", class, strings.ToLower(division))
}

// DefaultAccounts returns the provisioned credential table:
// one admin plus one teacher per class (1-12) and division (A-E), all sharing `password`.
func DefaultAccounts(password string) Accounts {
	accs := make(Accounts, 1+core.MaxClass*len(core.Divisions))
	accs[AdminUsername] = Account{Password: password, Role: RoleAdmin}
	for _, class := range core.Classes() {
		for _, div := range core.Divisions {
			accs[TeacherUsername(class, div)] = Account{
				Password: password,
				Role:     RoleTeacher,
				Class:    class,
				Division: div,
			}
		}
	}
	return accs
}

// ChangePassword contains the information needed to change a user's password.
type ChangePassword struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"notblank"`
}

func (cp ChangePassword) Validate() error { return core.Validate.Struct(cp) }

// Credentials are submitted to log in.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return core.Validate.Struct(c)
}
