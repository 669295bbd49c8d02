package sim

import "errors"

// ErrEndOfStream is returned by Tick when every queue (market data,
// actions, and pending strategy updates) is drained. It is not a
// failure; an empty replay is a legal, if uneventful, run.
var ErrEndOfStream = errors.New("sim: end of stream")

// ErrMalformedUpdate is returned when an MdUpdate carries neither a
// snapshot nor a trade, a snapshot with an empty side, or a trade with
// an unrecognized side. Fatal: the caller should abort the run.
var ErrMalformedUpdate = errors.New("sim: malformed market data update")

// ErrInvalidOrder is returned by PlaceOrder for a non-positive size or
// a non-finite price. Fatal.
var ErrInvalidOrder = errors.New("sim: invalid order")
