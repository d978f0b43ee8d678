package domain

import "encoding/json"

// Snapshot представляет полное состояние хранилища на момент времени:
// все пользователи, все команды и все данные скаутинга одним документом
type Snapshot struct {
	Users        map[string]*User           `json:"users"`
	Teams        map[string]*Team           `json:"teams"`
	ScoutingData map[string]json.RawMessage `json:"scoutingData"`

	// Version используется бэкендами с optimistic locking, в документ не сериализуется
	Version int64 `json:"-"`
}

// NewSnapshot создает пустой снимок хранилища
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:        make(map[string]*User),
		Teams:        make(map[string]*Team),
		ScoutingData: make(map[string]json.RawMessage),
	}
}

// Normalize инициализирует nil-карты после десериализации частичного документа
func (s *Snapshot) Normalize() {
	if s.Users == nil {
		s.Users = make(map[string]*User)
	}
	if s.Teams == nil {
		s.Teams = make(map[string]*Team)
	}
	if s.ScoutingData == nil {
		s.ScoutingData = make(map[string]json.RawMessage)
	}
}

// Clone возвращает глубокую копию снимка
func (s *Snapshot) Clone() *Snapshot {
	c := NewSnapshot()
	c.Version = s.Version
	for name, u := range s.Users {
		user := *u
		c.Users[name] = &user
	}
	for number, t := range s.Teams {
		team := *t
		team.Members = append([]string(nil), t.Members...)
		c.Teams[number] = &team
	}
	for id, raw := range s.ScoutingData {
		c.ScoutingData[id] = append(json.RawMessage(nil), raw...)
	}
	return c
}
