package app

// Trigger describes an inbound request to run a synchronization: either a
// trusted scheduler (marker set by the platform) or a manual caller
// supplying the shared secret.
type Trigger struct {
	SchedulerMarker bool
	Secret          string
}

// Strategy is one independent authorization channel.
type Strategy interface {
	Authorize(t Trigger) bool
}

// SchedulerStrategy trusts the platform-injected scheduler marker.
type SchedulerStrategy struct{}

func (SchedulerStrategy) Authorize(t Trigger) bool { return t.SchedulerMarker }

// SharedSecretStrategy accepts an exact match against the configured
// secret. With no secret configured it always denies; there is no
// "open" mode.
type SharedSecretStrategy struct {
	Secret string
}

func (s SharedSecretStrategy) Authorize(t Trigger) bool {
	return s.Secret != "" && t.Secret == s.Secret
}

// Gate evaluates an ordered list of strategies; the trigger is authorized
// if any strategy accepts. Adding a channel later means appending a
// strategy, not touching existing ones.
type Gate struct {
	strategies []Strategy
}

func NewGate(sharedSecret string) *Gate {
	return &Gate{strategies: []Strategy{
		SchedulerStrategy{},
		SharedSecretStrategy{Secret: sharedSecret},
	}}
}

func (g *Gate) Authorized(t Trigger) bool {
	for _, s := range g.strategies {
		if s.Authorize(t) {
			return true
		}
	}
	return false
}
