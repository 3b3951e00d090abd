// Package connect4 implements the rules of Connect Four as an event-sourced
// aggregate. A Game never stores its state directly: every accepted command
// raises domain events, and the board, turn order, and result are projections
// folded from those events. The same projection code replays persisted
// history, so a game loaded from a store is indistinguishable from the live
// game that produced it.
//
// Typical usage looks like:
//   - Pick an EventLog (MemoryLog, RedisLog, or one of the boltlog and pglog
//     backends)
//   - Wrap it in an EventRepository, optionally with an EventHub
//   - Drive games through an App: CreateGame, MakeMove, GetGame
//   - Consume committed events from the EventHub
//
// The cmd/connect4 directory contains an interactive terminal game that
// exercises the API against any configured store.
package connect4
