package ui

import (
	"staygrip/internal/domain"
	"staygrip/internal/eventbus"
	"staygrip/internal/router"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// loadingMsg tells the model a fetch started
type loadingMsg struct {
	kind domain.LoadingKind
}

// resultsMsg carries a committed result page
type resultsMsg struct {
	page domain.ResultPage
}

// clearResultsMsg empties the result list after a failure
type clearResultsMsg struct{}

// notifyMsg is a non-blocking message for the status line
type notifyMsg struct {
	message string
	err     error
}

// navigatedMsg contains the result of a navigation started from the UI
type navigatedMsg struct {
	nav router.Navigation
	err error
}

// lookupStartedMsg is returned once a list-id lookup has been queued
type lookupStartedMsg struct {
	listID int
}

// filterOptionsMsg contains the advanced filter option lists
type filterOptionsMsg struct {
	options domain.FilterOptions
	err     error
}

// pagerMsg contains the result of running the external pager
type pagerMsg struct {
	err error
}
