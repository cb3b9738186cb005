package event

// BusOption configures an event Bus.
type BusOption func(*busConfig)

type busConfig struct {
	panicHandler PanicHandler
}

func defaultBusConfig() busConfig {
	return busConfig{}
}

// WithPanicHandler sets a callback invoked when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(c *busConfig) {
		c.panicHandler = h
	}
}
