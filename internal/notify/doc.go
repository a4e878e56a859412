// Package notify builds and emits the notifications a save produces.
//
// # Kinds
//
//   - created: a new entry; sent to every audience member except the owner
//   - edited: title, content or protection changed; same audience as created
//   - commented: the comment changed; sent to the entry owner
//
// # Delivery
//
// Dispatcher hands each Event to a Sender and never reports failure to the
// caller: a failed notification is logged and dropped so it cannot undo a
// save that already succeeded. Retry and fan-out belong to the gateway.
package notify
