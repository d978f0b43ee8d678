package domain

import "time"

// Team представляет команду соревнования и ее состав
type Team struct {
	TeamNumber string    `json:"teamNumber"`
	Captain    string    `json:"captain"`
	Members    []string  `json:"members"`
	InviteCode string    `json:"inviteCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasMember проверяет, входит ли пользователь в состав команды
func (t *Team) HasMember(username string) bool {
	for _, m := range t.Members {
		if m == username {
			return true
		}
	}
	return false
}

// AddMember добавляет пользователя в состав команды.
// Повторное добавление того же пользователя не создает дубликат.
func (t *Team) AddMember(username string) {
	if t.HasMember(username) {
		return
	}
	t.Members = append(t.Members, username)
}

// RemoveMember удаляет пользователя из состава, сохраняя порядок остальных
func (t *Team) RemoveMember(username string) {
	members := t.Members[:0]
	for _, m := range t.Members {
		if m != username {
			members = append(members, m)
		}
	}
	t.Members = members
}

// NextCaptain возвращает первого по порядку участника кроме указанного.
// Пустая строка означает, что других участников не осталось.
func (t *Team) NextCaptain(exclude string) string {
	for _, m := range t.Members {
		if m != exclude {
			return m
		}
	}
	return ""
}
