// Package redisserver serves a message log over the Redis protocol (RESP2).
//
// Only the list commands a message log needs are implemented, so any Redis
// client, including another sigstream using the redis storage backend, can
// read and append streams:
//   - PING, ECHO, QUIT, SELECT 0
//   - RPUSH key value [value ...]
//   - LRANGE key start stop
//   - LLEN key
//
// Keys must be 8 bytes (a raw stream address). Values are stored verbatim.
// HELLO is answered with an error, which makes RESP3-capable clients fall
// back to RESP2.
package redisserver
