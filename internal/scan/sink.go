package scan

type multiSink []Sink

func (m multiSink) Publish(update Update) {
	for _, s := range m {
		s.Publish(update)
	}
}

// Combine fans updates out to every given sink, in order. Nil sinks are
// skipped.
func Combine(sinks ...Sink) Sink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}
