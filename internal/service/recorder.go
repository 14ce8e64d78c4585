package service

// Recorder receives business events for metrics. *metrics.Metrics
// implements it; a nil Recorder passed to a constructor means no-op.
type Recorder interface {
	AuthEvent(event, outcome string)
	HabitWrite(op string)
	ContactReceived()
}

type nopRecorder struct{}

func (nopRecorder) AuthEvent(string, string) {}
func (nopRecorder) HabitWrite(string)        {}
func (nopRecorder) ContactReceived()         {}

func orNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
