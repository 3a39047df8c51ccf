package m2n

import "github.com/pkg/errors"

// errUnsupported is returned by capability probes left deliberately
// unimplemented (acceptPreConnection/requestPreConnection/broadcastSend*):
// rather than guess at undocumented behavior, this implementation reports
// the capability as unsupported.
var errUnsupported = errors.New("m2n: capability not supported by this DistributedCommunication implementation")
