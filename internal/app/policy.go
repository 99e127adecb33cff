package app

import "github.com/dkeye/Callboard/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(id domain.ConnID) BackpressureAction
}

// SimplePolicy drops slow connections. Presence is a full resync, so a
// client that reconnects loses nothing but its call.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return KickMember
}
