// Package contact turns contact-form submissions into delivered emails.
//
// A Submission is built from untrusted input and checked with Validate. A
// Deliverer sends it through a mailer.Mailer under a Policy: an ordered list of
// sender identities, each tried up to MaxAttempts times with a delay that grows
// with the attempt number and depends on how the previous attempt failed.
//
// The Dispatcher decides whether delivery happens inside the request (ModeSync)
// or in the background (ModeAsync). In both modes the outcome is logged and
// never reported to the submitter.
//
//	d := contact.NewDeliverer(m, policy, contact.WithLogger(log))
//	dispatcher := contact.NewDispatcher(d, contact.ModeAsync, contact.WithMaxInFlight(8))
//	dispatcher.Submit(ctx, sub)
//	defer dispatcher.Shutdown(ctx)
package contact
