// Package notification models the durable outbound-notification queue.
//
// Producers enqueue a QueueEntry in StatusPending. The delivery worker is the
// only writer afterwards:
//
//	pending -> processing -> sent
//	processing -> pending   (delivery failed, retries remain)
//	processing -> failed    (retries exhausted, or dispatch raised an error)
//
// sent and failed are terminal.
package notification
