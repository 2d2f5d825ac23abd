package core

import "errors"

// ErrAlreadyInstalled is the one condition spec.md §7's disposition
// table marks as more than a trace-and-drop: "Installing stack on
// already-stacked node | Installer | Fatal — installer-level error."
// Every other row in that table (FIB miss, PIT full, duplicate nonce,
// unsolicited data, exhausted retransmissions, rejected send) is
// communicated purely through traces/counters, never a returned error.
var ErrAlreadyInstalled = errors.New("stack already installed on this node")
