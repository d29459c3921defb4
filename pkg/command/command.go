// Package command defines the command contract consumed by trigger authors,
// plus the last-in-first-out chain used to compose them.
package command

// Command performs one operation against a context of type Ctx. It is a pure
// function of its context to a result; there is no implicit retry.
type Command[Ctx any] interface {
	Execute(ctx Ctx) error
}

// Func adapts a plain function into a Command.
type Func[Ctx any] func(ctx Ctx) error

// Execute invokes the wrapped function.
func (f Func[Ctx]) Execute(ctx Ctx) error {
	return f(ctx)
}

// Noop is the identity command: it always succeeds without side effects.
type Noop[Ctx any] struct{}

// Execute does nothing.
func (Noop[Ctx]) Execute(Ctx) error {
	return nil
}

// Chain composes commands last-in first-out: the most recently attached
// command runs first. The zero value is the empty chain, which behaves like
// Noop.
type Chain[Ctx any] struct {
	commands []Command[Ctx]
}

// Chain returns a new chain with cmd attached on top of c.
func (c Chain[Ctx]) Chain(cmd Command[Ctx]) Chain[Ctx] {
	return Chain[Ctx]{commands: append(append([]Command[Ctx]{}, c.commands...), cmd)}
}

// Len returns the number of chained commands.
func (c Chain[Ctx]) Len() int {
	return len(c.commands)
}

// Execute runs the chained commands newest-first, short-circuiting on the
// first failure.
func (c Chain[Ctx]) Execute(ctx Ctx) error {
	for i := len(c.commands) - 1; i >= 0; i-- {
		if err := c.commands[i].Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}
