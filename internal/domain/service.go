package domain

// SchedulerService provides pure decision logic for the two scheduling loops.
// Every method is a function of (window, now, state) and has no side effects.
type SchedulerService struct{}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService() *SchedulerService {
	return &SchedulerService{}
}

// ShouldStart is true inside the window while nothing is playing.
func (s *SchedulerService) ShouldStart(w Window, now TimeOfDay, st PlaybackState) bool {
	return !st.Playing && w.Contains(now)
}

// ShouldRestart is true when the track ended on its own while still in the window.
func (s *SchedulerService) ShouldRestart(w Window, now TimeOfDay, st PlaybackState) bool {
	return st.Playing && !st.EngineBusy && w.Contains(now)
}

// EndedOutsideWindow is true when the track ended on its own after the window
// closed. The intent flag is stale at that point and can be cleared.
func (s *SchedulerService) EndedOutsideWindow(w Window, now TimeOfDay, st PlaybackState) bool {
	return st.Playing && !st.EngineBusy && !w.Contains(now)
}

// ShouldStop is true once the window has closed and playback is still intended.
func (s *SchedulerService) ShouldStop(w Window, now TimeOfDay, st PlaybackState) bool {
	return st.Playing && w.Closed(now)
}
