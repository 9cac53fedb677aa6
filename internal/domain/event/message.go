package event

// Message is the envelope handed to the publisher.
// Payload is an arbitrary JSON-encodable mapping produced by the
// originating service; it is serialized as the message body.
type Message struct {
	Exchange   string
	RoutingKey string
	Payload    map[string]any
	// Expiration in broker units (milliseconds); nil when unset.
	Expiration *int64
	Headers    map[string]any
}
