// Package approval implements the ownership-aware approval workflow.
//
// When a client's selection would move entities it does not own, the
// move becomes a TeleportRequest routed to whoever can approve it:
// online owners first, then online authority users, then all authority
// users as a durable fallback. Each distinct recipient set gets one
// self-contained message with approve and deny actions.
//
// Deletion of the message is the resolution mutex. The first recipient
// to resolve it wins; everyone after observes "already gone" and does
// nothing.
package approval
