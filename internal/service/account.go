package service

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/storage"
)

// minPasswordLength is the minimum accepted password length
const minPasswordLength = 6

// AccountPolicy carries the configurable behavioral switches of the
// account engine. Historically these behaviors differed between server
// variants; they are collapsed here into explicit flags.
type AccountPolicy struct {
	// RequireTeam rejects registration without a team number or invite code
	RequireTeam bool

	// AcceptPrehashed additionally accepts a login value equal to the
	// stored legacy checksum (clients that hashed before sending)
	AcceptPrehashed bool
}

// AccountLifecycleEngine handles registration, login, password changes
// and account deletion, delegating team side effects to the
// TeamMembershipEngine. Like the membership engine, every mutating
// operation is a serialized load-modify-save cycle.
type AccountLifecycleEngine struct {
	store      storage.Store
	creds      *CredentialService
	membership *TeamMembershipEngine
	policy     AccountPolicy
	mu         *sync.Mutex
}

// NewAccountLifecycleEngine creates a new AccountLifecycleEngine.
// mu must be the same mutex handed to the membership engine.
func NewAccountLifecycleEngine(
	store storage.Store,
	creds *CredentialService,
	membership *TeamMembershipEngine,
	policy AccountPolicy,
	mu *sync.Mutex,
) *AccountLifecycleEngine {
	return &AccountLifecycleEngine{
		store:      store,
		creds:      creds,
		membership: membership,
		policy:     policy,
		mu:         mu,
	}
}

// Register creates a new account and resolves its team affiliation.
// An invite code takes precedence over a team number when both are given.
func (e *AccountLifecycleEngine) Register(ctx context.Context, username, password, teamNumber, inviteCode string) (*domain.UserProfile, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}
	if e.policy.RequireTeam && teamNumber == "" && inviteCode == "" {
		return nil, domain.ErrTeamRequired
	}

	passwordHash, err := e.creds.Hash(password)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if _, exists := snapshot.Users[username]; exists {
		return nil, domain.ErrUsernameTaken
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	snapshot.Users[username] = user

	switch {
	case inviteCode != "":
		if _, err := e.membership.joinByInvite(snapshot, username, inviteCode); err != nil {
			return nil, err
		}
	case teamNumber != "":
		if _, err := e.membership.joinByNumber(snapshot, username, teamNumber); err != nil {
			return nil, err
		}
	}

	if err := e.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// Login verifies the credentials and returns the public user projection.
// No session or token is issued; the caller manages its own session state.
// Legacy checksum hashes are upgraded to bcrypt on a successful login.
func (e *AccountLifecycleEngine) Login(ctx context.Context, username, password string) (*domain.UserProfile, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	user, ok := snapshot.Users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	verified, legacy := e.creds.Verify(user.PasswordHash, password)
	if !verified && e.policy.AcceptPrehashed && legacy {
		verified = subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(password)) == 1
		legacy = false
	}
	if !verified {
		return nil, domain.ErrInvalidPassword
	}

	if legacy {
		if rehashed, err := e.creds.Hash(password); err == nil {
			user.PasswordHash = rehashed
			// Best effort: the login itself succeeded even if the
			// upgraded hash could not be persisted
			_ = e.store.Save(ctx, snapshot)
		}
	}

	return user.Profile(), nil
}

// ChangePassword replaces the stored hash after verifying the current password
func (e *AccountLifecycleEngine) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	user, ok := snapshot.Users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	if verified, _ := e.creds.Verify(user.PasswordHash, currentPassword); !verified {
		return domain.ErrInvalidPassword
	}

	passwordHash, err := e.creds.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash

	return e.store.Save(ctx, snapshot)
}

// DeleteAccount removes the user record. With requireOwnerPassword the
// owner's password is verified first; admin-initiated deletion skips the
// check (the admin credential is validated by the transport). Team side
// effects match member removal and dissolution: a departing captain's
// team is handed to the lowest-index remaining member or deleted when
// empty. Scouting records authored by the user are kept.
func (e *AccountLifecycleEngine) DeleteAccount(ctx context.Context, username, password string, requireOwnerPassword bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	user, ok := snapshot.Users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	if requireOwnerPassword {
		if verified, _ := e.creds.Verify(user.PasswordHash, password); !verified {
			return domain.ErrInvalidPassword
		}
	}

	e.membership.detachUser(snapshot, username)
	delete(snapshot.Users, username)

	return e.store.Save(ctx, snapshot)
}
