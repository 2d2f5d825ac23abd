package core

import "time"

// Version of the forwarder binary.
var Version string

// BuildTime contains the timestamp of when this version was built.
var BuildTime string

// StartTimestamp is the time the node was started.
var StartTimestamp time.Time
