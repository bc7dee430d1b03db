package entity

type NotificationKind string

const (
	KindAdminNotification NotificationKind = "admin_notification"
	KindUserConfirmation  NotificationKind = "user_confirmation"
	KindUserWelcome       NotificationKind = "user_welcome"
)

// NotificationJob é transiente: existe apenas durante o dispatch,
// nunca é persistido.
type NotificationJob struct {
	Kind      NotificationKind `json:"kind"`
	Recipient string           `json:"recipient"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
}
