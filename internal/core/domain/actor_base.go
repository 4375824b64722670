package domain

import (
	"github.com/asynkron/protoactor-go/actor"
)

type ActorRef actor.PID

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

// SessionRequest is routed by the master actor to the comparison actor
// owning the session.
type SessionRequest interface {
	ActorRequest
	Session() string
}

type SessionRequestMixIn struct {
	ActorRequestMixIn
	SessionID string
}

func (r SessionRequestMixIn) Session() string {
	return r.SessionID
}
