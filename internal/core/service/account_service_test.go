package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rydwan10/pokecodex/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu             sync.Mutex
	accounts       map[string]string // username -> password
	emailTaken     bool
	usernameTaken  bool
	emailErr       error
	usernameErr    error
	registerErr    error
	registered     []string
	emailChecks    []string
	usernameChecks []string
	lookupErr      error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{accounts: make(map[string]string)}
}

func (r *stubUserRepo) Register(_ context.Context, username, email, password string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registerErr != nil {
		return nil, r.registerErr
	}
	r.registered = append(r.registered, username)
	r.accounts[username] = password
	return &domain.User{ID: "id-" + username, Username: username, Email: email, CreatedAt: time.Now().UTC()}, nil
}

func (r *stubUserRepo) FindByCredentials(_ context.Context, username, password string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	stored, ok := r.accounts[username]
	if !ok || stored != password {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.User{ID: "id-" + username, Username: username}, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	if _, ok := r.accounts[username]; !ok {
		return nil, domain.ErrUserNotFound
	}
	return &domain.User{ID: "id-" + username, Username: username}, nil
}

func (r *stubUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emailChecks = append(r.emailChecks, email)
	return r.emailTaken, r.emailErr
}

func (r *stubUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usernameChecks = append(r.usernameChecks, username)
	return r.usernameTaken, r.usernameErr
}

func (r *stubUserRepo) usernameCheckLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.usernameChecks...)
}

func (r *stubUserRepo) emailCheckLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.emailChecks...)
}

func (r *stubUserRepo) registeredLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.registered...)
}

type stubSessionStore struct {
	mu     sync.Mutex
	marker string
	saves  int
}

func (s *stubSessionStore) Save(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = username
	s.saves++
	return nil
}

func (s *stubSessionStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marker == "" {
		return "", domain.ErrSessionMissing
	}
	return s.marker, nil
}

func (s *stubSessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = ""
	return nil
}

func (s *stubSessionStore) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker
}

const checkWindow = 30 * time.Millisecond

// settle sleeps long enough for any armed debounce timer to fire.
func settle() { time.Sleep(5 * checkWindow) }

func newAccountSvc(repo *stubUserRepo, sessions *stubSessionStore) *AccountService {
	return NewAccountService(repo, sessions, checkWindow, zerolog.Nop())
}

// fillValidForm sets all four fields to structurally valid values with a
// debounce window that has not yet elapsed.
func fillValidForm(svc *AccountService) {
	svc.SetUsername("alice")
	svc.SetEmail("alice@example.com")
	svc.SetPassword("secret1")
	svc.SetConfirmPassword("secret1")
}

// ---------------------------------------------------------------------------
// Field validation
// ---------------------------------------------------------------------------

func TestAccountService_RapidEditsCollapseToOneCheck(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	for _, v := range []string{"ali", "alic", "alice"} {
		svc.SetUsername(v)
		time.Sleep(3 * time.Millisecond)
	}
	settle()
	svc.Await()

	checks := repo.usernameCheckLog()
	if len(checks) != 1 {
		t.Fatalf("expected exactly one remote check, got %v", checks)
	}
	if checks[0] != "alice" {
		t.Fatalf("expected check for the last value, got %q", checks[0])
	}
}

func TestAccountService_StructuralFailureSkipsRemoteCheck(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetUsername("ab")
	settle()

	if got := svc.Registration().UsernameError; got != msgUsernameLength {
		t.Fatalf("expected length error, got %q", got)
	}
	if checks := repo.usernameCheckLog(); len(checks) != 0 {
		t.Fatalf("structural failure must not reach the store, got %v", checks)
	}
}

// Length bounds count characters, not bytes: a three-character multibyte
// username is valid, two characters are not.
func TestAccountService_UsernameLengthCountsRunes(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetUsername("ábc")
	if got := svc.Registration().UsernameError; got != "" {
		t.Fatalf("three-character name must pass, got %q", got)
	}

	svc.SetUsername("áb")
	if got := svc.Registration().UsernameError; got != msgUsernameLength {
		t.Fatalf("two-character name must fail, got %q", got)
	}
}

func TestAccountService_EditCancelsPendingCheck(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetUsername("alice")
	// a structurally invalid edit inside the quiet period cancels the
	// scheduled check entirely
	svc.SetUsername("ab")
	settle()

	if checks := repo.usernameCheckLog(); len(checks) != 0 {
		t.Fatalf("cancelled check must not fire, got %v", checks)
	}
}

func TestAccountService_EmailPatternValidation(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetEmail("not-an-email")
	if got := svc.Registration().EmailError; got != msgEmailInvalid {
		t.Fatalf("expected pattern error, got %q", got)
	}

	svc.SetEmail("alice@example.com")
	if got := svc.Registration().EmailError; got != "" {
		t.Fatalf("error must clear on edit, got %q", got)
	}
	settle()
	svc.Await()

	if checks := repo.emailCheckLog(); len(checks) != 1 || checks[0] != "alice@example.com" {
		t.Fatalf("expected one check for the valid value, got %v", checks)
	}
}

func TestAccountService_TakenFieldSurfacesConflict(t *testing.T) {
	repo := newStubUserRepo()
	repo.usernameTaken = true
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetUsername("alice")
	settle()
	svc.Await()

	if got := svc.Registration().UsernameError; got != msgUsernameTaken {
		t.Fatalf("expected taken error, got %q", got)
	}
}

func TestAccountService_CheckTransportFailureFailsOpen(t *testing.T) {
	repo := newStubUserRepo()
	repo.usernameErr = errors.New("store unreachable")
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetUsername("alice")
	settle()
	svc.Await()

	if got := svc.Registration().UsernameError; got != "" {
		t.Fatalf("transport failure must not block the field, got %q", got)
	}
}

func TestAccountService_PasswordAndConfirmRevalidateTogether(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetPassword("abc")
	if got := svc.Registration().PasswordError; got != msgPasswordLength {
		t.Fatalf("expected length error, got %q", got)
	}

	svc.SetPassword("secret1")
	svc.SetConfirmPassword("secret2")
	if got := svc.Registration().ConfirmPasswordError; got != msgPasswordMismatch {
		t.Fatalf("expected mismatch error, got %q", got)
	}

	// editing the password re-validates the confirmation
	svc.SetPassword("secret2")
	if got := svc.Registration().ConfirmPasswordError; got != "" {
		t.Fatalf("expected mismatch to clear, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Submission pipeline
// ---------------------------------------------------------------------------

func TestAccountService_SubmitNoOpWhileInvalid(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.SetUsername("ab") // structural error
	svc.SetEmail("alice@example.com")
	svc.SetPassword("secret1")
	svc.SetConfirmPassword("secret1")

	svc.Submit()
	svc.Await()

	if reg := svc.Registration(); reg.Submitting || reg.SubmitSucceeded || reg.SubmitError != "" {
		t.Fatalf("submit must be a no-op, got %+v", reg)
	}
	if got := repo.registeredLog(); len(got) != 0 {
		t.Fatalf("no remote calls expected, got %v", got)
	}
}

func TestAccountService_SubmitEmailConflictTakesPrecedence(t *testing.T) {
	repo := newStubUserRepo()
	repo.emailTaken = true
	repo.usernameTaken = true
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	fillValidForm(svc)
	svc.Submit()
	svc.Await()

	reg := svc.Registration()
	if reg.SubmitError != msgEmailTaken {
		t.Fatalf("expected email conflict to win, got %q", reg.SubmitError)
	}
	if reg.Submitting || reg.SubmitSucceeded {
		t.Fatalf("unexpected flags: %+v", reg)
	}
	if got := repo.registeredLog(); len(got) != 0 {
		t.Fatalf("creation must not run on conflict, got %v", got)
	}
}

func TestAccountService_SubmitUsernameConflict(t *testing.T) {
	repo := newStubUserRepo()
	repo.usernameTaken = true
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	fillValidForm(svc)
	svc.Submit()
	svc.Await()

	if reg := svc.Registration(); reg.SubmitError != msgUsernameTaken {
		t.Fatalf("expected username conflict, got %q", reg.SubmitError)
	}
}

func TestAccountService_SubmitSuccess(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	fillValidForm(svc)
	svc.Submit()
	svc.Await()

	reg := svc.Registration()
	if !reg.SubmitSucceeded || reg.Submitting || reg.SubmitError != "" {
		t.Fatalf("expected success, got %+v", reg)
	}
	if got := repo.registeredLog(); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("expected one created account, got %v", got)
	}
}

func TestAccountService_SubmitTransportFailureFailsClosed(t *testing.T) {
	repo := newStubUserRepo()
	repo.emailErr = errors.New("store unreachable")
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	fillValidForm(svc)
	svc.Submit()
	svc.Await()

	reg := svc.Registration()
	if reg.SubmitError != msgRegisterFailed {
		t.Fatalf("expected generic failure, got %q", reg.SubmitError)
	}
	if reg.Submitting {
		t.Fatalf("submitting must return to false on every terminal branch")
	}
	if got := repo.registeredLog(); len(got) != 0 {
		t.Fatalf("creation must not run after failed checks, got %v", got)
	}
}

func TestAccountService_SubmitCreateFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.registerErr = errors.New("write denied")
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	fillValidForm(svc)
	svc.Submit()
	svc.Await()

	if reg := svc.Registration(); reg.SubmitError != msgRegisterFailed || reg.Submitting {
		t.Fatalf("expected failed terminal state, got %+v", reg)
	}
}

// ---------------------------------------------------------------------------
// Login / profile / logout
// ---------------------------------------------------------------------------

func TestAccountService_Login(t *testing.T) {
	repo := newStubUserRepo()
	repo.accounts["alice"] = "secret"
	sessions := &stubSessionStore{}
	svc := newAccountSvc(repo, sessions)
	defer svc.Close()

	svc.Login("alice", "secret")
	svc.Await()

	st := svc.LoginStatus()
	if !st.Succeeded || st.Error != "" || st.Authenticating {
		t.Fatalf("expected successful login, got %+v", st)
	}
	if sessions.current() != "alice" {
		t.Fatalf("expected session marker, got %q", sessions.current())
	}
	if p := svc.Profile(); p.CurrentUser == nil || p.CurrentUser.Username != "alice" {
		t.Fatalf("expected current user populated, got %+v", p)
	}
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.accounts["alice"] = "secret"
	sessions := &stubSessionStore{}
	svc := newAccountSvc(repo, sessions)
	defer svc.Close()

	svc.Login("alice", "wrong")
	svc.Await()

	st := svc.LoginStatus()
	if st.Succeeded || st.Error != msgInvalidLogin {
		t.Fatalf("expected rejection, got %+v", st)
	}
	if sessions.current() != "" {
		t.Fatalf("no session marker expected, got %q", sessions.current())
	}
}

func TestAccountService_Login_EmptyFieldsSkipRemoteCall(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.Login("  ", "")
	svc.Await()

	if st := svc.LoginStatus(); st.Error != msgFillAllFields {
		t.Fatalf("expected fill-in error, got %+v", st)
	}
}

func TestAccountService_Login_TransportFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.lookupErr = errors.New("store unreachable")
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.Login("alice", "secret")
	svc.Await()

	st := svc.LoginStatus()
	if st.Succeeded || st.Error == "" || st.Error == msgInvalidLogin {
		t.Fatalf("expected transport error description, got %+v", st)
	}
}

func TestAccountService_LoadCurrentUser_NoSession(t *testing.T) {
	repo := newStubUserRepo()
	repo.accounts["alice"] = "secret"
	svc := newAccountSvc(repo, &stubSessionStore{})
	defer svc.Close()

	svc.LoadCurrentUser()
	svc.Await()

	p := svc.Profile()
	if p.Error != domain.ErrSessionMissing.Error() {
		t.Fatalf("expected no-session error, got %+v", p)
	}
	if p.CurrentUser != nil {
		t.Fatalf("no user expected, got %+v", p.CurrentUser)
	}
}

func TestAccountService_LoadCurrentUser_Found(t *testing.T) {
	repo := newStubUserRepo()
	repo.accounts["alice"] = "secret"
	sessions := &stubSessionStore{marker: "alice"}
	svc := newAccountSvc(repo, sessions)
	defer svc.Close()

	svc.LoadCurrentUser()
	svc.Await()

	p := svc.Profile()
	if p.CurrentUser == nil || p.CurrentUser.Username != "alice" {
		t.Fatalf("expected profile loaded, got %+v", p)
	}
	if p.Loading || p.Error != "" {
		t.Fatalf("unexpected state: %+v", p)
	}
}

func TestAccountService_LoadCurrentUser_AccountGone(t *testing.T) {
	repo := newStubUserRepo()
	sessions := &stubSessionStore{marker: "ghost"}
	svc := newAccountSvc(repo, sessions)
	defer svc.Close()

	svc.LoadCurrentUser()
	svc.Await()

	if p := svc.Profile(); p.Error != msgProfileNotFound {
		t.Fatalf("expected profile load failure, got %+v", p)
	}
}

func TestAccountService_Logout(t *testing.T) {
	repo := newStubUserRepo()
	repo.accounts["alice"] = "secret"
	sessions := &stubSessionStore{}
	svc := newAccountSvc(repo, sessions)
	defer svc.Close()

	svc.Login("alice", "secret")
	svc.Await()

	svc.Logout()

	if sessions.current() != "" {
		t.Fatalf("expected session marker cleared, got %q", sessions.current())
	}
	if p := svc.Profile(); p.CurrentUser != nil {
		t.Fatalf("expected in-memory state cleared, got %+v", p)
	}
	if st := svc.LoginStatus(); st.Succeeded {
		t.Fatalf("login state must reset on logout")
	}
}
