// Package server implements the server side of the UDP sequence-checksum protocol.
//
// The server performs the following steps:
//  1. Binds a UDP socket on the configured port (30000 by default).
//  2. Reads one datagram at a time and prints a progress mark for it.
//  3. On BEGIN(n) it creates or resets the session of the source address at n and replies OKAY(n).
//  4. On CHECK(d) it compares d with the checksum of the stored sequence s. A match advances the
//     session to s+1 and replies NEXT(checksum(s+1)). A mismatch replies ERROR(s) and leaves s alone.
//  5. A CHECK from an address without a session, or any other message kind, is answered with REJECT.
//  6. Datagrams that do not decode are logged and dropped without a reply.
//
// Sessions are kept for the lifetime of the process. Nothing that happens to a single datagram
// stops the loop; only cancelling the context does.
package server
