package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"staygrip/internal/domain"
	"staygrip/internal/eventbus"
)

// Bridge turns controller callbacks into bubbletea messages. It implements
// controller.View and controller.Notifier.
type Bridge struct {
	send func(tea.Msg)
}

// NewBridge creates a bridge that delivers messages with send, usually
// (*tea.Program).Send
func NewBridge(send func(tea.Msg)) *Bridge {
	return &Bridge{send: send}
}

func (b *Bridge) ShowLoading(kind domain.LoadingKind) {
	b.send(loadingMsg{kind: kind})
}

func (b *Bridge) ShowResults(page domain.ResultPage) {
	b.send(resultsMsg{page: page})
}

func (b *Bridge) ClearResults() {
	b.send(clearResultsMsg{})
}

func (b *Bridge) Notify(message string, err error) {
	b.send(notifyMsg{message: message, err: err})
}

// ForwardEvents relays the address-changing events from the bus to the
// program. The returned func unsubscribes.
func ForwardEvents(bus eventbus.EventBus, send func(tea.Msg)) func() {
	forward := func(e eventbus.DomainEvent) {
		send(EventMsg{Event: e})
	}
	unsubs := []func(){
		bus.Subscribe(domain.EventNavigated, forward),
		bus.Subscribe(domain.EventURLSynced, forward),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
