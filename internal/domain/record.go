package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordID представляет составной ключ записи скаутинга:
// {userId}-{teamNumber}-{matchType}-{matchNumber}-{epochMillis}
type RecordID struct {
	UserID      string
	TeamNumber  string
	MatchType   string
	MatchNumber string
	Timestamp   int64
}

// String собирает составной ключ в строковую форму
func (id RecordID) String() string {
	return fmt.Sprintf("%s-%s-%s-%s-%d",
		id.UserID, id.TeamNumber, id.MatchType, id.MatchNumber, id.Timestamp)
}

// ParseRecordID разбирает составной ключ записи скаутинга.
// Имя пользователя само может содержать дефисы, поэтому разбор идет
// с правого края: последние четыре сегмента фиксированы.
func ParseRecordID(raw string) (RecordID, error) {
	parts := strings.Split(raw, "-")
	if len(parts) < 5 {
		return RecordID{}, fmt.Errorf("%w: record id %q", ErrInvalidRecordID, raw)
	}

	n := len(parts)
	ts, err := strconv.ParseInt(parts[n-1], 10, 64)
	if err != nil {
		return RecordID{}, fmt.Errorf("%w: timestamp %q", ErrInvalidRecordID, parts[n-1])
	}
	if _, err := strconv.Atoi(parts[n-2]); err != nil {
		return RecordID{}, fmt.Errorf("%w: match number %q", ErrInvalidRecordID, parts[n-2])
	}

	return RecordID{
		UserID:      strings.Join(parts[:n-4], "-"),
		TeamNumber:  parts[n-4],
		MatchType:   parts[n-3],
		MatchNumber: parts[n-2],
		Timestamp:   ts,
	}, nil
}
