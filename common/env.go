package common

// TCPHost is the loopback host used when the unix socket transport is
// unavailable and the server falls back to TCP.
const TCPHost = "127.0.0.1"

// DefaultPort is the TCP fallback port for the daemon socket.
const DefaultPort = 4358

// SocketPathEnv overrides the default Unix socket location.
const SocketPathEnv = "SHIFTDL_SOCKET_PATH"

// MaxMessageSize caps one framed message on the client socket. Schedule
// payloads are small; anything bigger is a protocol violation.
const MaxMessageSize = 1 << 20
