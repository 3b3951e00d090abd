package connect4

// Handler reacts to a persisted Event, usually one received from a Consumer
type Handler func(*Event) error

// MakeHandler returns a Handler that decodes the event into T before calling
// fn
func MakeHandler[T DomainEvent](fn func(ev *Event, data T) error) Handler {
	dec := MakeDecoder[T]()
	return func(ev *Event) error {
		de, err := dec(ev)
		if err != nil {
			return err
		}
		return fn(ev, de.(T))
	}
}

// MakeDispatcher routes each event to the Handler registered for its type.
// Events without a Handler are ignored
func MakeDispatcher(handlers map[EventType]Handler) Handler {
	return func(ev *Event) error {
		if fn, ok := handlers[ev.Type]; ok {
			return fn(ev)
		}
		return nil
	}
}
