package auth

// NoopNotifier is a LogoutNotifier that does nothing. Useful for commands
// that only read session state.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLogout(string) error { return nil }

// NoopNavigator is a Navigator that does nothing
type NoopNavigator struct{}

func (NoopNavigator) Navigate(string) {}
