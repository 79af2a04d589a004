package domain

// AllowList задаёт статический список пользователей и чатов, которым доступны команды учёта.
type AllowList struct {
	users map[int64]struct{}
	chats map[int64]struct{}
}

// NewAllowList создаёт список доступа.
func NewAllowList(userIDs, chatIDs []int64) AllowList {
	list := AllowList{
		users: make(map[int64]struct{}, len(userIDs)),
		chats: make(map[int64]struct{}, len(chatIDs)),
	}
	for _, id := range userIDs {
		list.users[id] = struct{}{}
	}
	for _, id := range chatIDs {
		list.chats[id] = struct{}{}
	}
	return list
}

// Allows сообщает, разрешены ли команды пользователю в чате.
// Достаточно совпадения пользователя или чата.
func (l AllowList) Allows(userID, chatID int64) bool {
	if _, ok := l.users[userID]; ok && userID != 0 {
		return true
	}
	if _, ok := l.chats[chatID]; ok && chatID != 0 {
		return true
	}
	return false
}

// Empty сообщает, что список пуст и команды учёта недоступны никому.
func (l AllowList) Empty() bool {
	return len(l.users) == 0 && len(l.chats) == 0
}
