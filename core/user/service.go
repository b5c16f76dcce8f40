package user

import (
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoSession          = errors.New("no user is logged in")
)

// Service validates credentials against the credential table and keeps the current session.
// The table is provisioned with the default accounts whenever it lacks the admin account.
type Service struct {
	mu              sync.RWMutex
	store           core.BlobStore
	defaultPassword string
	current         *User
}

// NewService returns a Service whose session is restored from the store, if any.
func NewService(store core.BlobStore, defaultPassword string) (*Service, error) {
	svc := &Service{store: store, defaultPassword: defaultPassword}

	var usr User
	found, err := core.LoadJSON(store, core.KeyCurrentUser, &usr)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "restoring session")
	}
	if found && usr.Username != "" {
		svc.current = &usr
	}
	return svc, nil
}

// accounts returns the credential table, provisioning it first if needed.
// The caller must hold svc.mu.
func (svc *Service) accounts() (Accounts, error) {
	accs := make(Accounts)
	if _, err := core.LoadJSON(svc.store, core.KeyUsers, &accs); err != nil {
		return nil, err
	}
	if _, ok := accs[AdminUsername]; ok {
		return accs, nil
	}

	accs = DefaultAccounts(svc.defaultPassword)
	if err := core.SaveJSON(svc.store, core.KeyUsers, accs); err != nil {
		return nil, pkgerrors.Wrap(err, "provisioning accounts")
	}
	return accs, nil
}

// Accounts returns a copy of the credential table.
func (svc *Service) Accounts() (Accounts, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.accounts()
}

func (svc *Service) authenticate(username, password string) (User, error) {
	accs, err := svc.accounts()
	if err != nil {
		return User{}, err
	}
	username = core.CleanString(username, true /* lower */)
	acc, ok := accs[username]
	if !ok || acc.Password != password {
		return User{}, ErrInvalidCredentials
	}
	return newUser(username, acc), nil
}

// Authenticate checks a username/password pair without touching the session.
func (svc *Service) Authenticate(username, password string) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.authenticate(username, password)
}

// Login authenticates the user and persists the session.
func (svc *Service) Login(username, password string) (User, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	usr, err := svc.authenticate(username, password)
	if err != nil {
		return User{}, err
	}
	if err := core.SaveJSON(svc.store, core.KeyCurrentUser, usr); err != nil {
		return User{}, pkgerrors.Wrap(err, "saving session")
	}
	svc.current = &usr
	return usr, nil
}

// Logout clears the session. Logging out without a session is a no-op.
func (svc *Service) Logout() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.store.Delete(core.KeyCurrentUser); err != nil {
		return pkgerrors.Wrap(err, "clearing session")
	}
	svc.current = nil
	return nil
}

// Current returns the logged in user, if any.
func (svc *Service) Current() (User, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if svc.current == nil {
		return User{}, false
	}
	return *svc.current, true
}

// ChangePassword changes the password of the logged in user.
func (svc *Service) ChangePassword(oldPassword, newPassword string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if svc.current == nil {
		return ErrNoSession
	}
	return svc.changePassword(svc.current.Username, oldPassword, newPassword)
}

// ChangeUserPassword changes the password of any user, given their current one.
func (svc *Service) ChangeUserPassword(username, oldPassword, newPassword string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.changePassword(core.CleanString(username, true /* lower */), oldPassword, newPassword)
}

func (svc *Service) changePassword(username, oldPassword, newPassword string) error {
	accs, err := svc.accounts()
	if err != nil {
		return err
	}
	acc, ok := accs[username]
	if !ok || acc.Password != oldPassword {
		return ErrInvalidCredentials
	}
	acc.Password = newPassword
	accs[username] = acc
	return pkgerrors.Wrap(core.SaveJSON(svc.store, core.KeyUsers, accs), "saving accounts")
}
