package events

const (
	EventUserLoggedIn  = "auth.login"
	EventUserLoggedOut = "auth.logout"
	EventUserCreated   = "user.created"
	EventUserDeleted   = "user.deleted"
)

func NewUserLoggedIn(userID int64, email, sessionID string) BaseEvent {
	return NewBaseEvent(EventUserLoggedIn, map[string]interface{}{
		"user_id":    userID,
		"email":      email,
		"session_id": sessionID,
	})
}

func NewUserLoggedOut(userID int64, sessionID string) BaseEvent {
	return NewBaseEvent(EventUserLoggedOut, map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
	})
}

func NewUserCreated(userID int64, email string) BaseEvent {
	return NewBaseEvent(EventUserCreated, map[string]interface{}{
		"user_id": userID,
		"email":   email,
	})
}

func NewUserDeleted(userID int64) BaseEvent {
	return NewBaseEvent(EventUserDeleted, map[string]interface{}{
		"user_id": userID,
	})
}
