package rabbitmq

// QosSettings carries explicit quality-of-service settings. All three
// fields must be present for the settings to be applied; a partial triple
// is ignored.
type QosSettings struct {
	PrefetchSize  *int
	PrefetchCount *int
	Global        *bool
}

func (s QosSettings) complete() bool {
	return s.PrefetchSize != nil && s.PrefetchCount != nil && s.Global != nil
}
