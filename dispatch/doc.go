// Package dispatch routes inbound updates for one bot to handler functions.
//
// Handlers live in numbered groups. For every update the groups run in
// ascending order and, inside a group, the first handler whose Check
// accepts the update runs. A handler returning ErrStopPropagation ends
// processing for that update.
//
//	d := dispatch.New(bot, dispatch.Options{UseContext: true})
//	d.AddHandler(dispatch.Command("start", func(c *dispatch.Context) error {
//	    _, err := c.Reply("hello")
//	    return err
//	}), 0)
//
// With Options.Workers == 0 handlers wrapped in Async run in the caller's
// goroutine; with Workers > 0 they run on a bounded pool.
package dispatch
