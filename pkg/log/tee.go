package log

// Tee combines capture sinks, typically a FileLogger and a SlogAdapter.
// Disabled sinks are dropped and nested tees are flattened. Tee returns nil
// when nothing is left and the sink itself when only one is.
func Tee(loggers ...Logger) Logger {
	var sinks teeLogger
	for _, l := range loggers {
		switch l := l.(type) {
		case teeLogger:
			sinks = append(sinks, l...)
		default:
			if Enabled(l) {
				sinks = append(sinks, l)
			}
		}
	}
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	default:
		return sinks
	}
}

type teeLogger []Logger

func (t teeLogger) Log(event Event) {
	for _, l := range t {
		l.Log(event)
	}
}
