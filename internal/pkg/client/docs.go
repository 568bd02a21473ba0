// Package client implements the client side of the UDP sequence-checksum protocol.
//
// The client performs the following steps:
//  1. Dial the server over UDP.
//  2. Send BEGIN with its starting sequence number and require OKAY echoing the same number.
//  3. Compute the digest it expects next, then send CHECK with the digest of its current sequence.
//  4. On NEXT carrying the expected digest, advance the sequence and print a progress mark.
//  5. Wait for the pacing interval and repeat from step 3.
//
// Any other reply ends the run with an error. The client never retries: the first anomaly is the
// result. The starting sequence is random per run unless set explicitly.
//
// Receives block until a reply arrives unless a timeout is configured, in which case a lost
// datagram surfaces as ErrTimeout. Cancelling the context interrupts any wait and Run returns nil.
package client
