package engine

// Event is a Unity-style multi-cast event.
// Listeners are keyed by an id so they can be removed later; Go function
// values are not comparable, so AddListener returns the id instead.
type Event struct {
	listeners map[int]func()
	nextID    int
}

// AddListener registers a callback and returns its listener id.
func (e *Event) AddListener(callback func()) int {
	if callback == nil {
		return -1
	}
	if e.listeners == nil {
		e.listeners = make(map[int]func())
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = callback
	return id
}

// RemoveListener removes the callback registered under id.
func (e *Event) RemoveListener(id int) {
	delete(e.listeners, id)
}

// RemoveAllListeners clears all listeners
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners
func (e *Event) Invoke() {
	for _, listener := range e.listeners {
		listener()
	}
}

// ListenerCount returns the number of registered listeners (for debugging)
func (e *Event) ListenerCount() int {
	return len(e.listeners)
}

// EventWithArg is a generic event with one argument
type EventWithArg[T any] struct {
	listeners map[int]func(T)
	nextID    int
}

func (e *EventWithArg[T]) AddListener(callback func(T)) int {
	if callback == nil {
		return -1
	}
	if e.listeners == nil {
		e.listeners = make(map[int]func(T))
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = callback
	return id
}

func (e *EventWithArg[T]) RemoveListener(id int) {
	delete(e.listeners, id)
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, listener := range e.listeners {
		listener(arg)
	}
}

func (e *EventWithArg[T]) ListenerCount() int {
	return len(e.listeners)
}
