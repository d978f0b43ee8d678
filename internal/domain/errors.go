package domain

import "errors"

// Доменные ошибки движков и хранилища
var (
	// ErrInvalidCredentials возвращается при пустом имени пользователя или пароле
	ErrInvalidCredentials = errors.New("username and password are required")

	// ErrPasswordTooShort возвращается когда пароль короче минимальной длины
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrTeamRequired возвращается при регистрации без номера команды и инвайт-кода
	ErrTeamRequired = errors.New("team number or invite code is required")

	// ErrUsernameTaken возвращается при попытке занять существующее имя пользователя
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrTeamNotFound возвращается когда команда не найдена
	ErrTeamNotFound = errors.New("team not found")

	// ErrInvalidPassword возвращается при несовпадении пароля
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidInviteCode возвращается когда инвайт-код не принадлежит ни одной команде
	ErrInvalidInviteCode = errors.New("invalid invite code")

	// ErrNotCaptain возвращается когда операция доступна только капитану
	ErrNotCaptain = errors.New("only the team captain can perform this action")

	// ErrCaptainCannotLeave возвращается при попытке капитана покинуть команду
	ErrCaptainCannotLeave = errors.New("captain cannot leave the team")

	// ErrCannotRemoveSelf возвращается при попытке капитана исключить самого себя
	ErrCannotRemoveSelf = errors.New("captain cannot remove themselves")

	// ErrNotAMember возвращается когда пользователь не состоит в указанной команде
	ErrNotAMember = errors.New("user is not a member of this team")

	// ErrAlreadyOnTeam возвращается при попытке вступить в команду, уже состоя в другой
	ErrAlreadyOnTeam = errors.New("user is already on a team")

	// ErrSelfTransfer возвращается при попытке передать капитанство самому себе
	ErrSelfTransfer = errors.New("cannot transfer captaincy to yourself")

	// ErrNotOnTeam возвращается когда пользователь не состоит ни в какой команде
	ErrNotOnTeam = errors.New("user is not on a team")

	// ErrInvalidRecordID возвращается при неразборчивом ключе записи скаутинга
	ErrInvalidRecordID = errors.New("invalid scouting record id")

	// ErrRecordNotFound возвращается когда запись скаутинга не найдена
	ErrRecordNotFound = errors.New("scouting record not found")

	// ErrStorage возвращается когда хранилище не смогло прочитать или записать снимок
	ErrStorage = errors.New("storage failure")

	// ErrConflictRetry возвращается при проигрыше optimistic-lock гонки, операцию нужно повторить
	ErrConflictRetry = errors.New("concurrent modification, retry the operation")
)

// ErrorCode представляет машиночитаемый код ошибки API
type ErrorCode string

// Категории ошибок API
const (
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeConflict         ErrorCode = "CONFLICT"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeStorage          ErrorCode = "STORAGE_ERROR"
	CodeConflictRetry    ErrorCode = "CONFLICT_RETRY"
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrTeamRequired), errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrInvalidRecordID):
		return CodeValidation
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrInvalidInviteCode),
		errors.Is(err, ErrNotAMember), errors.Is(err, ErrAlreadyOnTeam):
		return CodeConflict
	case errors.Is(err, ErrNotCaptain), errors.Is(err, ErrCaptainCannotLeave),
		errors.Is(err, ErrCannotRemoveSelf):
		return CodePermissionDenied
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTeamNotFound),
		errors.Is(err, ErrNotOnTeam), errors.Is(err, ErrRecordNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflictRetry):
		return CodeConflictRetry
	case errors.Is(err, ErrStorage):
		return CodeStorage
	default:
		return CodeStorage
	}
}
