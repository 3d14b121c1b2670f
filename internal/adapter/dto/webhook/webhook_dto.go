package webhook

// NotificationBatch is the envelope the platform posts to the webhook
// endpoint. One request can carry several change notifications.
type NotificationBatch struct {
	Value []Notification `json:"value"`
}

// Notification is one change notification about a call resource.
type Notification struct {
	SubscriptionID string           `json:"subscriptionId"`
	ChangeType     string           `json:"changeType"`
	ClientState    string           `json:"clientState"`
	Resource       string           `json:"resource"`
	ResourceData   NotificationData `json:"resourceData"`
}

// NotificationData carries the call identifier and its lifecycle state.
type NotificationData struct {
	ID    string `json:"id"`
	State string `json:"state"`
}
