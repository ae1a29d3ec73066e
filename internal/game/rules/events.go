package rules

import "sync"

// EventType indicates the category of a game event.
type EventType string

const (
	// Turn structure events
	EventStepChanged EventType = "STEP_CHANGED"
	EventTurnStarted EventType = "TURN_STARTED"

	// Stack events
	EventActionQueued           EventType = "ACTION_QUEUED"
	EventActionDowngraded       EventType = "ACTION_DOWNGRADED"
	EventSpecialActionPerformed EventType = "SPECIAL_ACTION_PERFORMED"
	EventActionResolved         EventType = "ACTION_RESOLVED"
	EventStackResolved          EventType = "STACK_RESOLVED"

	// Combat events
	EventAttackersDeclared EventType = "ATTACKERS_DECLARED"
	EventBlockersDeclared  EventType = "BLOCKERS_DECLARED"
	EventCombatDamageDealt EventType = "COMBAT_DAMAGE_DEALT"
	EventPermanentDied     EventType = "PERMANENT_DIED"

	// Card events
	EventCardDrawn     EventType = "CARD_DRAWN"
	EventCardDiscarded EventType = "CARD_DISCARDED"

	// Game events
	EventGameStarted EventType = "GAME_STARTED"
	EventGameOver    EventType = "GAME_OVER"
)

// Event represents a state change that observers may react to.
type Event struct {
	Type        EventType
	Turn        int
	Phase       Phase
	Step        Step
	PlayerID    string // Player the event is about or acting player
	SourceID    string // Card, permanent or action that caused the event
	TargetID    string // Player or permanent affected by the event
	Amount      int    // Damage, life, count of resolved actions
	Description string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

type subscription struct {
	handle    int
	eventType EventType // empty for all events
	callback  Listener
}

// EventBus provides a synchronous publish/subscribe implementation with type
// filtering. Listeners are called in subscription order.
type EventBus struct {
	mu         sync.RWMutex
	listeners  []subscription
	nextHandle int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, listener Listener) int {
	if eventType == "" {
		return -1
	}
	return bus.add(eventType, listener)
}

func (bus *EventBus) add(eventType EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners = append(bus.listeners, subscription{
		handle:    handle,
		eventType: eventType,
		callback:  listener,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.listeners {
		if sub.handle == handle {
			bus.listeners = append(bus.listeners[:i:i], bus.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all matching listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	if bus == nil {
		return
	}
	bus.mu.RLock()
	listeners := make([]subscription, len(bus.listeners))
	copy(listeners, bus.listeners)
	bus.mu.RUnlock()

	for _, sub := range listeners {
		if sub.eventType == "" || sub.eventType == event.Type {
			sub.callback(event)
		}
	}
}
