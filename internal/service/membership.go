package service

import (
	"context"
	"sync"
	"time"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/storage"
)

// TeamMembershipEngine governs the user/team affiliation state machine:
// creating and joining teams, leaving, member removal, captaincy transfer
// and team dissolution. Every public operation is a full
// load-modify-save cycle over the store snapshot, serialized by a mutex
// shared with the other engines. A failed save discards the in-memory
// change; no partial state survives.
type TeamMembershipEngine struct {
	store storage.Store
	codes *InviteCodeGenerator
	mu    *sync.Mutex
}

// NewTeamMembershipEngine creates a new TeamMembershipEngine.
// mu must be the same mutex handed to the other engines that write the store.
func NewTeamMembershipEngine(store storage.Store, codes *InviteCodeGenerator, mu *sync.Mutex) *TeamMembershipEngine {
	return &TeamMembershipEngine{
		store: store,
		codes: codes,
		mu:    mu,
	}
}

// CreateOrJoinByNumber puts the user on the team with the given number.
// An unknown number creates the team with the user as captain; a known
// number appends the user as a regular member.
func (e *TeamMembershipEngine) CreateOrJoinByNumber(ctx context.Context, username, teamNumber string) (*domain.Team, error) {
	if teamNumber == "" {
		return nil, domain.ErrTeamRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	team, err := e.joinByNumber(snapshot, username, teamNumber)
	if err != nil {
		return nil, err
	}

	if err := e.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	return team, nil
}

// JoinByInviteCode puts the user on the team owning the invite code.
// This path never creates a team.
func (e *TeamMembershipEngine) JoinByInviteCode(ctx context.Context, username, inviteCode string) (*domain.Team, error) {
	if inviteCode == "" {
		return nil, domain.ErrInvalidInviteCode
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	team, err := e.joinByInvite(snapshot, username, inviteCode)
	if err != nil {
		return nil, err
	}

	if err := e.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	return team, nil
}

// RefreshInviteCode replaces the team's invite code with a new random one.
// Captain only. Membership is unaffected.
func (e *TeamMembershipEngine) RefreshInviteCode(ctx context.Context, username, teamNumber string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return "", err
	}

	team, ok := snapshot.Teams[teamNumber]
	if !ok {
		return "", domain.ErrTeamNotFound
	}
	if team.Captain != username {
		return "", domain.ErrNotCaptain
	}

	team.InviteCode = e.codes.Generate()

	if err := e.store.Save(ctx, snapshot); err != nil {
		return "", err
	}
	return team.InviteCode, nil
}

// LeaveTeam removes the user from their current team. The captain cannot
// leave: captaincy must be transferred or the team dissolved first.
func (e *TeamMembershipEngine) LeaveTeam(ctx context.Context, username string) error {
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
	if !user.HasTeam() {
		return domain.ErrNotOnTeam
	}
	if user.IsCaptain {
		return domain.ErrCaptainCannotLeave
	}

	if team, ok := snapshot.Teams[user.TeamNumber]; ok {
		team.RemoveMember(username)
	}
	user.TeamNumber = ""
	user.IsCaptain = false

	return e.store.Save(ctx, snapshot)
}

// RemoveMember expels a regular member from the team. Captain only;
// the captain cannot remove themselves.
func (e *TeamMembershipEngine) RemoveMember(ctx context.Context, captainUsername, teamNumber, memberUsername string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	team, ok := snapshot.Teams[teamNumber]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if team.Captain != captainUsername {
		return domain.ErrNotCaptain
	}
	if memberUsername == captainUsername {
		return domain.ErrCannotRemoveSelf
	}
	if !team.HasMember(memberUsername) {
		return domain.ErrNotAMember
	}

	team.RemoveMember(memberUsername)
	if member, ok := snapshot.Users[memberUsername]; ok {
		member.TeamNumber = ""
		member.IsCaptain = false
	}

	return e.store.Save(ctx, snapshot)
}

// DissolveTeam deletes the team entirely, unaffiliating every member.
// Captain only.
func (e *TeamMembershipEngine) DissolveTeam(ctx context.Context, username, teamNumber string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	team, ok := snapshot.Teams[teamNumber]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if team.Captain != username {
		return domain.ErrNotCaptain
	}

	for _, member := range team.Members {
		if user, ok := snapshot.Users[member]; ok {
			user.TeamNumber = ""
			user.IsCaptain = false
		}
	}
	delete(snapshot.Teams, teamNumber)

	return e.store.Save(ctx, snapshot)
}

// TransferCaptaincy hands the captaincy over to another member of the team.
// The old captain stays on the team as a regular member.
func (e *TeamMembershipEngine) TransferCaptaincy(ctx context.Context, captainUsername, teamNumber, newCaptainUsername string) error {
	if newCaptainUsername == captainUsername {
		return domain.ErrSelfTransfer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	team, ok := snapshot.Teams[teamNumber]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if team.Captain != captainUsername {
		return domain.ErrNotCaptain
	}
	if !team.HasMember(newCaptainUsername) {
		return domain.ErrNotAMember
	}

	team.Captain = newCaptainUsername
	if user, ok := snapshot.Users[captainUsername]; ok {
		user.IsCaptain = false
	}
	if user, ok := snapshot.Users[newCaptainUsername]; ok {
		user.IsCaptain = true
	}

	return e.store.Save(ctx, snapshot)
}

// GetTeam returns a copy of the team. The invite code is visible only
// to the team's captain.
func (e *TeamMembershipEngine) GetTeam(ctx context.Context, teamNumber, requestingUsername string) (*domain.Team, error) {
	snapshot, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	team, ok := snapshot.Teams[teamNumber]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}

	view := *team
	view.Members = append([]string(nil), team.Members...)
	if requestingUsername != team.Captain {
		view.InviteCode = ""
	}
	return &view, nil
}

// joinByNumber applies the create-or-join transition to a loaded snapshot.
// The user record must already exist in the snapshot.
func (e *TeamMembershipEngine) joinByNumber(snapshot *domain.Snapshot, username, teamNumber string) (*domain.Team, error) {
	user, ok := snapshot.Users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	// Rejoining one's own team is idempotent
	if user.HasTeam() && user.TeamNumber != teamNumber {
		return nil, domain.ErrAlreadyOnTeam
	}

	team, ok := snapshot.Teams[teamNumber]
	if !ok {
		team = &domain.Team{
			TeamNumber: teamNumber,
			Captain:    username,
			Members:    []string{username},
			InviteCode: e.codes.Generate(),
			CreatedAt:  time.Now().UTC(),
		}
		snapshot.Teams[teamNumber] = team
		user.TeamNumber = teamNumber
		user.IsCaptain = true
		return team, nil
	}

	team.AddMember(username)
	// Teams created before invite codes existed may lack one
	if team.InviteCode == "" {
		team.InviteCode = e.codes.Generate()
	}
	user.TeamNumber = teamNumber
	user.IsCaptain = team.Captain == username
	return team, nil
}

// joinByInvite applies the join-by-invite transition to a loaded snapshot
func (e *TeamMembershipEngine) joinByInvite(snapshot *domain.Snapshot, username, inviteCode string) (*domain.Team, error) {
	user, ok := snapshot.Users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	var team *domain.Team
	for _, t := range snapshot.Teams {
		if t.InviteCode != "" && t.InviteCode == inviteCode {
			team = t
			break
		}
	}
	if team == nil {
		return nil, domain.ErrInvalidInviteCode
	}
	// Rejoining one's own team is idempotent
	if user.HasTeam() && user.TeamNumber != team.TeamNumber {
		return nil, domain.ErrAlreadyOnTeam
	}

	team.AddMember(username)
	user.TeamNumber = team.TeamNumber
	user.IsCaptain = team.Captain == username
	return team, nil
}

// detachUser removes the user from their team inside a loaded snapshot,
// reassigning captaincy or deleting the team as needed. Used by account
// deletion: a departing captain hands the team to the lowest-index
// remaining member; a team left empty is deleted.
func (e *TeamMembershipEngine) detachUser(snapshot *domain.Snapshot, username string) {
	user, ok := snapshot.Users[username]
	if !ok || !user.HasTeam() {
		return
	}

	team, ok := snapshot.Teams[user.TeamNumber]
	if ok {
		if team.Captain == username {
			next := team.NextCaptain(username)
			if next == "" {
				delete(snapshot.Teams, team.TeamNumber)
			} else {
				team.RemoveMember(username)
				team.Captain = next
				if successor, ok := snapshot.Users[next]; ok {
					successor.IsCaptain = true
				}
			}
		} else {
			team.RemoveMember(username)
		}
	}

	user.TeamNumber = ""
	user.IsCaptain = false
}
