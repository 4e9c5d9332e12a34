// Package live implements the bidirectional voice session against the
// hosted model endpoint: the WebSocket client and wire protocol, the
// tool-call dispatcher that turns model actions into order and insight
// records, the playback scheduler and input meter behind the dashboard
// indicators, and the manager that keeps exactly one session open
// across drops and server-initiated closes.
package live
