package domain

import "time"

// User представляет зарегистрированного скаута
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	TeamNumber   string    `json:"team,omitempty"`
	IsCaptain    bool      `json:"isCaptain"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserProfile представляет публичную проекцию пользователя (без хеша пароля)
type UserProfile struct {
	Username   string `json:"username"`
	TeamNumber string `json:"team,omitempty"`
	IsCaptain  bool   `json:"isCaptain"`
}

// Profile возвращает публичную проекцию пользователя
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		Username:   u.Username,
		TeamNumber: u.TeamNumber,
		IsCaptain:  u.IsCaptain,
	}
}

// HasTeam возвращает true если пользователь состоит в команде
func (u *User) HasTeam() bool {
	return u.TeamNumber != ""
}
