package notify

import "sound-scheduler/internal/logging"

// LogNotifier writes notifications to the log instead of the desktop.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Notify(title, message string) error {
	logging.Infof("%s: %s", title, message)
	return nil
}

func (LogNotifier) Alert(title, message string) error {
	logging.Errorf("%s: %s", title, message)
	return nil
}
