package services

// Realtime event names pushed to a user's sockets
const (
	EventWalletUpdated  = "wallet_updated"
	EventCheckinApplied = "checkin_applied"
	EventLeadConfirmed  = "lead_confirmed"
	EventMetricsUpdated = "metrics_updated"
	EventMissionUpdated = "mission_updated"
)

// Notifier pushes an event to every open connection of a user
type Notifier interface {
	NotifyUser(userID, event string, data map[string]interface{})
}

type noopNotifier struct{}

func (noopNotifier) NotifyUser(string, string, map[string]interface{}) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
