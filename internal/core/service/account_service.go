package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rydwan10/pokecodex/internal/core/domain"
	"github.com/rydwan10/pokecodex/internal/core/ports"
	"github.com/rydwan10/pokecodex/internal/pkg/debounce"
	"github.com/rydwan10/pokecodex/internal/pkg/metrics"
)

const (
	fieldUsername = "username"
	fieldEmail    = "email"

	// DefaultCheckWindow is the quiet period before a remote uniqueness
	// check fires for an edited field.
	DefaultCheckWindow = 500 * time.Millisecond
)

// Inline error strings rendered next to the originating control.
const (
	msgUsernameLength   = "username must be between 3 and 20 characters"
	msgEmailInvalid     = "email must be a valid email address"
	msgPasswordLength   = "password must be between 6 and 50 characters"
	msgPasswordMismatch = "passwords do not match"
	msgUsernameTaken    = "username already exists"
	msgEmailTaken       = "email already exists"
	msgFillAllFields    = "please fill in all fields"
	msgRegisterFailed   = "registration failed"
	msgInvalidLogin     = "invalid username or password"
	msgProfileNotFound  = "failed to load user profile"
)

// RegistrationState is the per-field validation state machine plus the
// submission flags. An empty error string means the field is valid.
type RegistrationState struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`

	UsernameError        string `json:"username_error,omitempty"`
	EmailError           string `json:"email_error,omitempty"`
	PasswordError        string `json:"password_error,omitempty"`
	ConfirmPasswordError string `json:"confirm_password_error,omitempty"`

	Submitting      bool   `json:"submitting"`
	SubmitSucceeded bool   `json:"submit_succeeded"`
	SubmitError     string `json:"submit_error,omitempty"`
}

// LoginState tracks the authentication pipeline.
type LoginState struct {
	Authenticating bool   `json:"authenticating"`
	Succeeded      bool   `json:"succeeded"`
	Error          string `json:"error,omitempty"`
}

// ProfileState tracks the current-account snapshot loaded via the session
// marker.
type ProfileState struct {
	CurrentUser *domain.User `json:"current_user,omitempty"`
	Loading     bool         `json:"loading"`
	Error       string       `json:"error,omitempty"`
}

// AccountService owns the registration, login, and profile workflows. Field
// edits validate synchronously, then schedule a debounced remote uniqueness
// check; only the check for the latest value may ever resolve into state.
// Remote-check transport failures fail open; submission failures fail closed.
type AccountService struct {
	repo     ports.UserRepository
	sessions ports.SessionStore
	checks   *debounce.Scheduler
	validate *validator.Validate
	log      zerolog.Logger

	mu      sync.Mutex
	reg     RegistrationState
	login   LoginState
	profile ProfileState

	fieldGen    map[string]uint64
	fieldCancel map[string]context.CancelFunc

	root     context.Context
	shutdown context.CancelFunc
	inflight sync.WaitGroup
}

func NewAccountService(repo ports.UserRepository, sessions ports.SessionStore, checkWindow time.Duration, log zerolog.Logger) *AccountService {
	if checkWindow <= 0 {
		checkWindow = DefaultCheckWindow
	}
	root, shutdown := context.WithCancel(context.Background())
	return &AccountService{
		repo:        repo,
		sessions:    sessions,
		checks:      debounce.NewScheduler(checkWindow),
		validate:    validator.New(),
		log:         log,
		fieldGen:    make(map[string]uint64),
		fieldCancel: make(map[string]context.CancelFunc),
		root:        root,
		shutdown:    shutdown,
	}
}

// Registration returns a snapshot of the registration form state.
func (s *AccountService) Registration() RegistrationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg
}

// LoginStatus returns a snapshot of the login pipeline state.
func (s *AccountService) LoginStatus() LoginState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login
}

// Profile returns a snapshot of the profile state.
func (s *AccountService) Profile() ProfileState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.profile
	if s.profile.CurrentUser != nil {
		clone := *s.profile.CurrentUser
		snap.CurrentUser = &clone
	}
	return snap
}

// Close cancels in-flight work, joins the check scheduler, then waits for
// the completions to drain. The root context is cancelled first so a check
// firing mid-shutdown fails fast; Stop returns only after any fired check
// has registered (and released) its in-flight slot, keeping the final Wait
// free of concurrent Adds.
func (s *AccountService) Close() {
	s.shutdown()
	s.checks.Stop()
	s.inflight.Wait()
}

// SetUsername records an edit, clears the stale error, applies structural
// validation, and (when structurally valid) debounces a remote uniqueness
// check for the new value.
func (s *AccountService) SetUsername(value string) {
	s.mu.Lock()
	s.reg.Username = value
	s.reg.UsernameError = ""
	s.supersedeFieldLocked(fieldUsername)

	trimmed := strings.TrimSpace(value)
	// Bounds are in characters, so multibyte names are not over-counted.
	if l := utf8.RuneCountInString(trimmed); l < domain.UsernameMinLen || l > domain.UsernameMaxLen {
		s.reg.UsernameError = msgUsernameLength
		s.mu.Unlock()
		s.checks.Cancel(fieldUsername)
		return
	}
	gen := s.fieldGen[fieldUsername]
	s.mu.Unlock()

	s.checks.Schedule(fieldUsername, func() {
		s.runUniquenessCheck(fieldUsername, trimmed, gen)
	})
}

// SetEmail mirrors SetUsername with a pattern check instead of length bounds.
func (s *AccountService) SetEmail(value string) {
	s.mu.Lock()
	s.reg.Email = value
	s.reg.EmailError = ""
	s.supersedeFieldLocked(fieldEmail)

	trimmed := strings.TrimSpace(value)
	if s.validate.Var(trimmed, "required,email") != nil {
		s.reg.EmailError = msgEmailInvalid
		s.mu.Unlock()
		s.checks.Cancel(fieldEmail)
		return
	}
	gen := s.fieldGen[fieldEmail]
	s.mu.Unlock()

	s.checks.Schedule(fieldEmail, func() {
		s.runUniquenessCheck(fieldEmail, trimmed, gen)
	})
}

// SetPassword validates length bounds synchronously and re-validates the
// confirmation against the new value. No debounce.
func (s *AccountService) SetPassword(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.Password = value
	s.reg.PasswordError = validatePassword(value)
	s.revalidateConfirmLocked()
}

// SetConfirmPassword re-validates equality against the current password on
// every edit. No debounce.
func (s *AccountService) SetConfirmPassword(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reg.ConfirmPassword = value
	s.revalidateConfirmLocked()
}

func validatePassword(value string) string {
	if l := utf8.RuneCountInString(strings.TrimSpace(value)); l < domain.PasswordMinLen || l > domain.PasswordMaxLen {
		return msgPasswordLength
	}
	return ""
}

func (s *AccountService) revalidateConfirmLocked() {
	if s.reg.ConfirmPassword == "" {
		s.reg.ConfirmPasswordError = ""
		return
	}
	if s.reg.ConfirmPassword != s.reg.Password {
		s.reg.ConfirmPasswordError = msgPasswordMismatch
	} else {
		s.reg.ConfirmPasswordError = ""
	}
}

// supersedeFieldLocked bumps the field's check generation and cancels any
// in-flight remote check so a dangling completion can never mutate state for
// a value that has since changed. Caller holds mu.
func (s *AccountService) supersedeFieldLocked(field string) {
	s.fieldGen[field]++
	if cancel, ok := s.fieldCancel[field]; ok {
		cancel()
		delete(s.fieldCancel, field)
	}
}

// runUniquenessCheck executes one remote existence lookup for a field value.
// It runs on the debounce scheduler's timer goroutine after the quiet period.
func (s *AccountService) runUniquenessCheck(field, value string, gen uint64) {
	s.mu.Lock()
	if s.fieldGen[field] != gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.root)
	s.fieldCancel[field] = cancel
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()

	var exists bool
	var err error
	if field == fieldEmail {
		exists, err = s.repo.EmailExists(ctx, value)
	} else {
		exists, err = s.repo.UsernameExists(ctx, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fieldGen[field] != gen {
		return
	}
	delete(s.fieldCancel, field)

	if err != nil {
		// Fail open: a flaky connection must not block the user. The
		// submission pipeline re-checks with fail-closed semantics.
		metrics.UniquenessChecksTotal.WithLabelValues(field, "error").Inc()
		s.log.Warn().Err(err).Str("field", field).Msg("uniqueness check failed, assuming available")
		return
	}
	if exists {
		metrics.UniquenessChecksTotal.WithLabelValues(field, "taken").Inc()
		if field == fieldEmail {
			s.reg.EmailError = msgEmailTaken
		} else {
			s.reg.UsernameError = msgUsernameTaken
		}
		return
	}
	metrics.UniquenessChecksTotal.WithLabelValues(field, "available").Inc()
}

// formValidLocked is the form-valid predicate: all four error strings empty
// and all four fields non-empty after trimming. Caller holds mu.
func (s *AccountService) formValidLocked() bool {
	r := s.reg
	if r.UsernameError != "" || r.EmailError != "" || r.PasswordError != "" || r.ConfirmPasswordError != "" {
		return false
	}
	return strings.TrimSpace(r.Username) != "" &&
		strings.TrimSpace(r.Email) != "" &&
		strings.TrimSpace(r.Password) != "" &&
		strings.TrimSpace(r.ConfirmPassword) != ""
}

// Submit runs the registration pipeline: both uniqueness checks concurrently,
// fail fast on a conflict (email takes precedence), then account creation.
// A call while submitting or while the form is invalid is a no-op.
func (s *AccountService) Submit() {
	s.mu.Lock()
	if s.reg.Submitting || !s.formValidLocked() {
		s.mu.Unlock()
		return
	}
	s.reg.Submitting = true
	s.reg.SubmitError = ""
	username := strings.TrimSpace(s.reg.Username)
	email := strings.TrimSpace(s.reg.Email)
	password := s.reg.Password
	s.inflight.Add(1)
	s.mu.Unlock()

	go s.performRegistration(username, email, password)
}

func (s *AccountService) performRegistration(username, email, password string) {
	defer s.inflight.Done()

	ctx, cancel := context.WithCancel(s.root)
	defer cancel()

	var (
		emailExists, usernameExists bool
		emailErr, usernameErr       error
		wg                          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		emailExists, emailErr = s.repo.EmailExists(ctx, email)
	}()
	go func() {
		defer wg.Done()
		usernameExists, usernameErr = s.repo.UsernameExists(ctx, username)
	}()
	wg.Wait()

	// Fail closed: transport errors during submission block with a message.
	if emailErr != nil || usernameErr != nil {
		s.log.Error().AnErr("email_err", emailErr).AnErr("username_err", usernameErr).Msg("submission existence checks failed")
		s.finishSubmit(msgRegisterFailed, "error")
		return
	}
	if emailExists {
		s.finishSubmit(msgEmailTaken, "conflict")
		return
	}
	if usernameExists {
		s.finishSubmit(msgUsernameTaken, "conflict")
		return
	}

	if _, err := s.repo.Register(ctx, username, email, password); err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("account creation failed")
		s.finishSubmit(msgRegisterFailed, "error")
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", username).Msg("account registered")
	s.mu.Lock()
	s.reg.Submitting = false
	s.reg.SubmitSucceeded = true
	s.mu.Unlock()
}

// finishSubmit records a failed terminal branch. Submitting returns to false
// on every path out of the pipeline.
func (s *AccountService) finishSubmit(msg, result string) {
	metrics.RegistrationsTotal.WithLabelValues(result).Inc()
	s.mu.Lock()
	s.reg.Submitting = false
	s.reg.SubmitError = msg
	s.mu.Unlock()
}

// Login verifies username+password via the account repository. Empty fields
// short-circuit with an inline error and no remote call. On success the
// session marker is persisted for subsequent profile loads.
func (s *AccountService) Login(username, password string) {
	s.mu.Lock()
	if s.login.Authenticating {
		s.mu.Unlock()
		return
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		s.login.Error = msgFillAllFields
		s.mu.Unlock()
		return
	}
	s.login.Authenticating = true
	s.login.Error = ""
	s.login.Succeeded = false
	s.inflight.Add(1)
	s.mu.Unlock()

	go s.performLogin(username, password)
}

func (s *AccountService) performLogin(username, password string) {
	defer s.inflight.Done()

	ctx, cancel := context.WithCancel(s.root)
	defer cancel()

	user, err := s.repo.FindByCredentials(ctx, username, password)
	if err == nil {
		if saveErr := s.sessions.Save(ctx, user.Username); saveErr != nil {
			s.log.Warn().Err(saveErr).Msg("failed to persist session marker")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.login.Authenticating = false

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		s.login.Error = msgInvalidLogin
	case err != nil:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.login.Error = "login failed: " + err.Error()
	default:
		metrics.LoginsTotal.WithLabelValues("success").Inc()
		s.login.Succeeded = true
		s.profile.CurrentUser = user
		s.log.Info().Str("username", user.Username).Msg("login succeeded")
	}
}

// LoadCurrentUser reads the session marker and, when present, loads the
// matching account. A missing marker is an immediate error without an
// account lookup.
func (s *AccountService) LoadCurrentUser() {
	s.mu.Lock()
	if s.profile.Loading {
		s.mu.Unlock()
		return
	}
	s.profile.Loading = true
	s.profile.Error = ""
	s.inflight.Add(1)
	s.mu.Unlock()

	go s.performProfileLoad()
}

func (s *AccountService) performProfileLoad() {
	defer s.inflight.Done()

	ctx, cancel := context.WithCancel(s.root)
	defer cancel()

	username, err := s.sessions.Load(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.profile.Loading = false
		if errors.Is(err, domain.ErrSessionMissing) {
			s.profile.Error = domain.ErrSessionMissing.Error()
		} else {
			s.profile.Error = "error loading profile: " + err.Error()
		}
		return
	}

	user, err := s.repo.FindByUsername(ctx, username)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Loading = false
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.profile.Error = msgProfileNotFound
	case err != nil:
		s.profile.Error = "error loading profile: " + err.Error()
	default:
		s.profile.CurrentUser = user
	}
}

// Logout clears the in-memory account state and the session marker.
func (s *AccountService) Logout() {
	s.mu.Lock()
	s.profile = ProfileState{}
	s.login = LoginState{}
	s.mu.Unlock()

	if err := s.sessions.Clear(context.Background()); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear session marker")
	}
}

// Await blocks until dispatched completions drain. The presentation layer
// uses it to render terminal state after forwarding an intent; tests use it
// to join on quiescence.
func (s *AccountService) Await() {
	s.inflight.Wait()
}
