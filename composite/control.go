package composite

import "github.com/ShadowBlip/InputPlumber-sub000/capability"
import "github.com/ShadowBlip/InputPlumber-sub000/profile"

// Control is the contract a composite device exposes to whatever
// control surface drives it — a CLI today, a message-bus RPC service if
// one is ever built. It is intentionally transport-agnostic: nothing in
// this package opens a socket.
type Control interface {
	LoadProfile(p *profile.Profile)
	SetInterceptMode(on bool)
	SetTargetDevices(keep []string)
	ListSourceDevices() []string
	SubscribeIntercepted() <-chan capability.Event
	Stop()
}

var _ Control = (*Device)(nil)
