package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchStarted   EventType = "SearchStarted"
	EventSearchCompleted EventType = "SearchCompleted"
	EventSearchFailed    EventType = "SearchFailed"
	EventURLSynced       EventType = "URLSynced"
	EventNavigated       EventType = "Navigated"
	EventLookupCompleted EventType = "LookupCompleted"
	EventNotification    EventType = "Notification"
	EventConfigLoaded    EventType = "ConfigLoaded"
	EventConfigSaved     EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchStartedEvent is emitted when the controller sends a query to the gateway
type SearchStartedEvent struct {
	Key     string
	Loading LoadingKind
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent is emitted when results for the current search are committed
type SearchCompletedEvent struct {
	Key  string
	Page ResultPage
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when the gateway fails; results are already cleared
type SearchFailedEvent struct {
	Key string
	Err error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// URLSyncedEvent is emitted after the controller replaced the address to match state
type URLSyncedEvent struct {
	NavigationID string
	Href         string
}

func (e URLSyncedEvent) Type() EventType { return EventURLSynced }

// NavigatedEvent is emitted by the router once a navigation has settled
type NavigatedEvent struct {
	NavigationID string
	Href         string
	Replace      bool
}

func (e NavigatedEvent) Type() EventType { return EventNavigated }

// LookupCompletedEvent carries the result of a direct list-id lookup
type LookupCompletedEvent struct {
	ListID int
	Page   ResultPage
	Err    error
}

func (e LookupCompletedEvent) Type() EventType { return EventLookupCompleted }

// NotificationEvent is a user-facing, non-blocking message
type NotificationEvent struct {
	Message string
	Err     error
}

func (e NotificationEvent) Type() EventType { return EventNotification }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
