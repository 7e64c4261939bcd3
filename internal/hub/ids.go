package hub

import "sync/atomic"

var connCounter atomic.Uint64

func nextConnID() connID {
	return connID(connCounter.Add(1))
}
