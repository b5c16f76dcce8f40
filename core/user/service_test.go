package user_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/core/user"
	"github.com/sarvodaya/feedesk/storage/blobstore/inmem"
)

func newService(t *testing.T, store core.BlobStore) *user.Service {
	svc, err := user.NewService(store, "admin")
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func storedAccounts(t *testing.T, store core.BlobStore) user.Accounts {
	raw, ok, err := store.Get(core.KeyUsers)
	if err != nil || !ok {
		t.Fatalf("users blob: ok %v, error %v", ok, err)
	}
	accs := make(user.Accounts)
	if err = json.Unmarshal([]byte(raw), &accs); err != nil {
		t.Fatalf("decoding users blob: %v", err)
	}
	return accs
}

func TestService_Login(t *testing.T) {
	store := inmemblob.Open()
	svc := newService(t, store)

	tests := []struct {
		name     string
		username string
		password string
		want     user.User
		wantErr  error
	}{
		{
			name:     "admin",
			username: "admin",
			password: "admin",
			want:     user.User{ID: "admin", Username: "admin", Role: user.RoleAdmin},
		},
		{
			name:     "teacher",
			username: "class3c",
			password: "admin",
			want:     user.User{ID: "class3c", Username: "class3c", Role: user.RoleTeacher, Class: "3", Division: "C"},
		},
		{
			name:     "teacher upper case",
			username: " CLASS12E ",
			password: "admin",
			want:     user.User{ID: "class12e", Username: "class12e", Role: user.RoleTeacher, Class: "12", Division: "E"},
		},
		{name: "wrong password", username: "admin", password: "Admin", wantErr: user.ErrInvalidCredentials},
		{name: "unknown user", username: "class13a", password: "admin", wantErr: user.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Login(tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Login() got = %+v, want %+v", got, tt.want)
			}
			if tt.wantErr == nil {
				if cur, ok := svc.Current(); !ok || cur != tt.want {
					t.Errorf("Current() = %+v, %v; want %+v", cur, ok, tt.want)
				}
			}
		})
	}
}

func TestService_provisioning(t *testing.T) {
	store := inmemblob.Open()
	svc := newService(t, store)

	if _, ok, _ := store.Get(core.KeyUsers); ok {
		t.Fatal("users blob written before the first login")
	}
	_, _ = svc.Login("nobody", "nothing")

	accs := storedAccounts(t, store)
	if len(accs) != 61 {
		t.Errorf("provisioned %d accounts, want 61", len(accs))
	}
	admins := 0
	for uname, acc := range accs {
		if acc.Password != "admin" {
			t.Errorf("%s has password %q, want the default one", uname, acc.Password)
		}
		if acc.Role == user.RoleAdmin {
			admins++
			continue
		}
		if !core.IsValidClass(acc.Class) || !core.IsValidDivision(acc.Division) {
			t.Errorf("%s bound to %q-%q", uname, acc.Class, acc.Division)
		}
		if uname != user.TeacherUsername(acc.Class, acc.Division) {
			t.Errorf("%s bound to %s-%s", uname, acc.Class, acc.Division)
		}
	}
	if admins != 1 {
		t.Errorf("provisioned %d admins, want exactly 1", admins)
	}

	// an existing table with an admin is left alone
	_ = store.Set(core.KeyUsers, `{"admin":{"password":"secret","role":"admin"}}`)
	if _, err := svc.Login("admin", "secret"); err != nil {
		t.Errorf("Login() error = %v", err)
	}
	if _, err := svc.Login("class1a", "admin"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("Login(class1a) error = %v, want ErrInvalidCredentials", err)
	}

	// a table without the admin is replaced by the defaults
	_ = store.Set(core.KeyUsers, `{"class1a":{"password":"x","role":"teacher","class":"1","division":"A"}}`)
	if _, err := svc.Login("class1a", "admin"); err != nil {
		t.Errorf("Login() after reprovisioning error = %v", err)
	}
}

func TestService_session(t *testing.T) {
	store := inmemblob.Open()
	svc := newService(t, store)

	if _, ok := svc.Current(); ok {
		t.Fatal("Current() found a session before login")
	}
	usr, err := svc.Login("class1b", "admin")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// session survives a restart
	restored := newService(t, store)
	if cur, ok := restored.Current(); !ok || cur != usr {
		t.Errorf("restored Current() = %+v, %v; want %+v", cur, ok, usr)
	}

	if err = restored.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, ok := restored.Current(); ok {
		t.Error("Current() found a session after logout")
	}
	if _, ok, _ := store.Get(core.KeyCurrentUser); ok {
		t.Error("currentUser blob still present after logout")
	}
	if err = restored.Logout(); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
}

func TestService_ChangePassword(t *testing.T) {
	store := inmemblob.Open()
	svc := newService(t, store)

	if err := svc.ChangePassword("admin", "new"); !errors.Is(err, user.ErrNoSession) {
		t.Fatalf("ChangePassword() without session error = %v, want ErrNoSession", err)
	}
	if _, err := svc.Login("class2d", "admin"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	tests := []struct {
		name    string
		old     string
		new     string
		wantErr error
		wantPwd string
	}{
		{name: "wrong old password", old: "nope", new: "s3cret", wantErr: user.ErrInvalidCredentials, wantPwd: "admin"},
		{name: "success", old: "admin", new: "s3cret", wantPwd: "s3cret"},
		{name: "old password no longer valid", old: "admin", new: "other", wantErr: user.ErrInvalidCredentials, wantPwd: "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(tt.old, tt.new)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ChangePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := storedAccounts(t, store)["class2d"].Password; got != tt.wantPwd {
				t.Errorf("stored password = %q, want %q", got, tt.wantPwd)
			}
		})
	}

	if _, err := svc.Authenticate("class2d", "s3cret"); err != nil {
		t.Errorf("Authenticate() with the new password error = %v", err)
	}
	if got := storedAccounts(t, store)["class2e"].Password; got != "admin" {
		t.Errorf("other account password = %q, want it untouched", got)
	}
}

func TestService_ChangeUserPassword(t *testing.T) {
	svc := newService(t, inmemblob.Open())

	if err := svc.ChangeUserPassword("ghost", "admin", "x"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("ChangeUserPassword(unknown) error = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangeUserPassword("admin", "admin", "root"); err != nil {
		t.Fatalf("ChangeUserPassword() error = %v", err)
	}
	if _, ok := svc.Current(); ok {
		t.Error("ChangeUserPassword() opened a session")
	}
	if _, err := svc.Authenticate("admin", "root"); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}
}

func TestService_persistenceFailure(t *testing.T) {
	store := inmemblob.OpenFailing()
	svc := newService(t, store)
	store.Fail(errors.New("quota exceeded"))

	if _, err := svc.Login("admin", "admin"); err == nil {
		t.Fatal("Login() error = nil, want the store error")
	}
	if _, ok := svc.Current(); ok {
		t.Error("Current() found a session after a failed login")
	}
}

func TestUser_CanAccess(t *testing.T) {
	admin := user.User{Username: "admin", Role: user.RoleAdmin}
	teacher := user.User{Username: "class4b", Role: user.RoleTeacher, Class: "4", Division: "B"}

	tests := []struct {
		name     string
		usr      user.User
		class    string
		division string
		want     bool
	}{
		{"admin any", admin, "7", "E", true},
		{"teacher own", teacher, "4", "B", true},
		{"teacher other division", teacher, "4", "C", false},
		{"teacher other class", teacher, "5", "B", false},
		{"anonymous", user.User{}, "4", "B", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.usr.CanAccess(tt.class, tt.division); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}
