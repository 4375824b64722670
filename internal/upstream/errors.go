package upstream

import "errors"

var (
	ErrUpstreamStatus = errors.New("upstream: unexpected status")
	ErrNoSource       = errors.New("upstream: neither base url nor fixtures file configured")
)
