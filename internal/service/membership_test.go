package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ftcscout/scout-backend/internal/domain"
	"github.com/ftcscout/scout-backend/internal/storage"
	"github.com/ftcscout/scout-backend/internal/storage/memory"
)

// failingStore оборачивает хранилище и позволяет имитировать сбой записи
type failingStore struct {
	storage.Store
	failSave bool
}

func (f *failingStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if f.failSave {
		return domain.ErrStorage
	}
	return f.Store.Save(ctx, snapshot)
}

// testEnv собирает оба движка поверх хранилища в памяти
type testEnv struct {
	store      *failingStore
	membership *TeamMembershipEngine
	accounts   *AccountLifecycleEngine
}

func newTestEnv(t *testing.T, policy AccountPolicy) *testEnv {
	t.Helper()

	store := &failingStore{Store: memory.New()}
	var mu sync.Mutex
	// Минимальная стоимость bcrypt чтобы не замедлять тесты
	creds := NewCredentialServiceWithCost(bcrypt.MinCost)
	membership := NewTeamMembershipEngine(store, NewInviteCodeGenerator(), &mu)
	accounts := NewAccountLifecycleEngine(store, creds, membership, policy, &mu)

	return &testEnv{
		store:      store,
		membership: membership,
		accounts:   accounts,
	}
}

func defaultTestEnv(t *testing.T) *testEnv {
	return newTestEnv(t, AccountPolicy{RequireTeam: true})
}

// register регистрирует пользователя и падает при ошибке
func (env *testEnv) register(t *testing.T, username, teamNumber, inviteCode string) {
	t.Helper()
	_, err := env.accounts.Register(context.Background(), username, "secret123", teamNumber, inviteCode)
	require.NoError(t, err)
}

// snapshot читает текущее состояние хранилища
func (env *testEnv) snapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	snapshot, err := env.store.Load(context.Background())
	require.NoError(t, err)
	return snapshot
}

func TestTeamMembershipEngine_CreateOrJoinByNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("первый участник создает команду и становится капитаном", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		snapshot := env.snapshot(t)
		team := snapshot.Teams["100"]
		require.NotNil(t, team)
		assert.Equal(t, "alice", team.Captain)
		assert.Equal(t, []string{"alice"}, team.Members)
		assert.NotEmpty(t, team.InviteCode)
		assert.True(t, snapshot.Users["alice"].IsCaptain)
		assert.Equal(t, "100", snapshot.Users["alice"].TeamNumber)
	})

	t.Run("второй участник присоединяется рядовым членом", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice", "bob"}, snapshot.Teams["100"].Members)
		assert.False(t, snapshot.Users["bob"].IsCaptain)
		assert.Equal(t, "100", snapshot.Users["bob"].TeamNumber)
	})

	t.Run("повторное вступление в свою команду идемпотентно", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		_, err := env.membership.CreateOrJoinByNumber(ctx, "bob", "100")
		require.NoError(t, err)
		_, err = env.membership.CreateOrJoinByNumber(ctx, "alice", "100")
		require.NoError(t, err)

		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice", "bob"}, snapshot.Teams["100"].Members)
		// Капитан при повторном вступлении не понижается
		assert.True(t, snapshot.Users["alice"].IsCaptain)
	})

	t.Run("ошибка: вступление в другую команду состоя в своей", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		_, err := env.membership.CreateOrJoinByNumber(ctx, "alice", "200")

		assert.ErrorIs(t, err, domain.ErrAlreadyOnTeam)
		assert.Nil(t, env.snapshot(t).Teams["200"])
	})

	t.Run("ошибка: пустой номер команды", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		_, err := env.membership.CreateOrJoinByNumber(ctx, "alice", "")

		assert.ErrorIs(t, err, domain.ErrTeamRequired)
	})

	t.Run("ошибка: неизвестный пользователь", func(t *testing.T) {
		env := defaultTestEnv(t)

		_, err := env.membership.CreateOrJoinByNumber(ctx, "ghost", "100")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestTeamMembershipEngine_JoinByInviteCode(t *testing.T) {
	ctx := context.Background()

	t.Run("вступление по действующему коду", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		code := env.snapshot(t).Teams["100"].InviteCode

		env.register(t, "carol", "", code)

		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice", "carol"}, snapshot.Teams["100"].Members)
		assert.False(t, snapshot.Users["carol"].IsCaptain)
	})

	t.Run("ошибка: неизвестный код не создает команду и не меняет состояние", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		before := env.snapshot(t)

		_, err := env.membership.JoinByInviteCode(ctx, "alice", "BADCODE")

		assert.ErrorIs(t, err, domain.ErrInvalidInviteCode)
		assert.Equal(t, before.Teams, env.snapshot(t).Teams)
		assert.Len(t, env.snapshot(t).Teams, 1)
	})

	t.Run("ошибка: пустой код", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		_, err := env.membership.JoinByInviteCode(ctx, "alice", "")

		assert.ErrorIs(t, err, domain.ErrInvalidInviteCode)
	})
}

func TestTeamMembershipEngine_RefreshInviteCode(t *testing.T) {
	ctx := context.Background()

	t.Run("капитан обновляет код, членство не меняется", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")
		oldCode := env.snapshot(t).Teams["100"].InviteCode

		newCode, err := env.membership.RefreshInviteCode(ctx, "alice", "100")

		require.NoError(t, err)
		assert.NotEqual(t, oldCode, newCode)
		snapshot := env.snapshot(t)
		assert.Equal(t, newCode, snapshot.Teams["100"].InviteCode)
		assert.Equal(t, []string{"alice", "bob"}, snapshot.Teams["100"].Members)
	})

	t.Run("ошибка: не капитан", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		_, err := env.membership.RefreshInviteCode(ctx, "bob", "100")

		assert.ErrorIs(t, err, domain.ErrNotCaptain)
	})

	t.Run("ошибка: команда не найдена", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		_, err := env.membership.RefreshInviteCode(ctx, "alice", "999")

		assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	})
}

func TestTeamMembershipEngine_LeaveTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("рядовой участник покидает команду", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		require.NoError(t, env.membership.LeaveTeam(ctx, "bob"))

		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice"}, snapshot.Teams["100"].Members)
		assert.Empty(t, snapshot.Users["bob"].TeamNumber)
		assert.False(t, snapshot.Users["bob"].IsCaptain)
	})

	t.Run("ошибка: капитан не может выйти, состояние не меняется", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		err := env.membership.LeaveTeam(ctx, "alice")

		assert.ErrorIs(t, err, domain.ErrCaptainCannotLeave)
		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice", "bob"}, snapshot.Teams["100"].Members)
		assert.True(t, snapshot.Users["alice"].IsCaptain)
	})

	t.Run("ошибка: пользователь вне команды", func(t *testing.T) {
		env := newTestEnv(t, AccountPolicy{})
		env.register(t, "loner", "", "")

		err := env.membership.LeaveTeam(ctx, "loner")

		assert.ErrorIs(t, err, domain.ErrNotOnTeam)
	})

	t.Run("ошибка: сбой записи хранилища не оставляет частичного состояния", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		env.store.failSave = true
		err := env.membership.LeaveTeam(ctx, "bob")
		env.store.failSave = false

		assert.ErrorIs(t, err, domain.ErrStorage)
		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice", "bob"}, snapshot.Teams["100"].Members)
		assert.Equal(t, "100", snapshot.Users["bob"].TeamNumber)
	})
}

func TestTeamMembershipEngine_RemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("капитан исключает участника", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		require.NoError(t, env.membership.RemoveMember(ctx, "alice", "100", "bob"))

		snapshot := env.snapshot(t)
		assert.Equal(t, []string{"alice"}, snapshot.Teams["100"].Members)
		assert.Empty(t, snapshot.Users["bob"].TeamNumber)
		assert.False(t, snapshot.Users["bob"].IsCaptain)
	})

	t.Run("ошибка: не капитан", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")
		env.register(t, "carol", "100", "")

		err := env.membership.RemoveMember(ctx, "bob", "100", "carol")

		assert.ErrorIs(t, err, domain.ErrNotCaptain)
	})

	t.Run("ошибка: капитан не может исключить себя", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		err := env.membership.RemoveMember(ctx, "alice", "100", "alice")

		assert.ErrorIs(t, err, domain.ErrCannotRemoveSelf)
	})

	t.Run("ошибка: исключаемый не состоит в команде", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "dave", "200", "")

		err := env.membership.RemoveMember(ctx, "alice", "100", "dave")

		assert.ErrorIs(t, err, domain.ErrNotAMember)
	})
}

func TestTeamMembershipEngine_DissolveTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("роспуск снимает привязку со всех участников", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")
		env.register(t, "carol", "100", "")

		require.NoError(t, env.membership.DissolveTeam(ctx, "alice", "100"))

		snapshot := env.snapshot(t)
		assert.Nil(t, snapshot.Teams["100"])
		for _, username := range []string{"alice", "bob", "carol"} {
			assert.Empty(t, snapshot.Users[username].TeamNumber, username)
			assert.False(t, snapshot.Users[username].IsCaptain, username)
		}
	})

	t.Run("ошибка: не капитан", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		err := env.membership.DissolveTeam(ctx, "bob", "100")

		assert.ErrorIs(t, err, domain.ErrNotCaptain)
		assert.NotNil(t, env.snapshot(t).Teams["100"])
	})
}

func TestTeamMembershipEngine_TransferCaptaincy(t *testing.T) {
	ctx := context.Background()

	t.Run("капитанство переходит, старый капитан остается участником", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		require.NoError(t, env.membership.TransferCaptaincy(ctx, "alice", "100", "bob"))

		snapshot := env.snapshot(t)
		assert.Equal(t, "bob", snapshot.Teams["100"].Captain)
		assert.Equal(t, []string{"alice", "bob"}, snapshot.Teams["100"].Members)
		assert.False(t, snapshot.Users["alice"].IsCaptain)
		assert.True(t, snapshot.Users["bob"].IsCaptain)
	})

	t.Run("ошибка: передача самому себе", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")

		err := env.membership.TransferCaptaincy(ctx, "alice", "100", "alice")

		assert.ErrorIs(t, err, domain.ErrSelfTransfer)
	})

	t.Run("ошибка: новый капитан не участник", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "dave", "200", "")

		err := env.membership.TransferCaptaincy(ctx, "alice", "100", "dave")

		assert.ErrorIs(t, err, domain.ErrNotAMember)
	})
}

func TestTeamMembershipEngine_GetTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("инвайт-код виден только капитану", func(t *testing.T) {
		env := defaultTestEnv(t)
		env.register(t, "alice", "100", "")
		env.register(t, "bob", "100", "")

		captainView, err := env.membership.GetTeam(ctx, "100", "alice")
		require.NoError(t, err)
		assert.NotEmpty(t, captainView.InviteCode)

		memberView, err := env.membership.GetTeam(ctx, "100", "bob")
		require.NoError(t, err)
		assert.Empty(t, memberView.InviteCode)

		anonView, err := env.membership.GetTeam(ctx, "100", "")
		require.NoError(t, err)
		assert.Empty(t, anonView.InviteCode)
	})

	t.Run("ошибка: команда не найдена", func(t *testing.T) {
		env := defaultTestEnv(t)

		_, err := env.membership.GetTeam(ctx, "999", "")

		assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	})
}
