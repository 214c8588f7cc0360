package shared

import "context"

// Command is a reversible state change: the previous state is captured when
// the command is built, Apply changes local state immediately and Revert puts
// the captured state back.
type Command[S any] struct {
	previous S
	apply    func()
	revert   func(S)
}

// NewCommand captures previous and prepares apply/revert
func NewCommand[S any](previous S, apply func(), revert func(S)) *Command[S] {
	return &Command[S]{
		previous: previous,
		apply:    apply,
		revert:   revert,
	}
}

// Previous returns the captured state
func (c *Command[S]) Previous() S {
	return c.previous
}

// Apply changes local state
func (c *Command[S]) Apply() {
	if c.apply != nil {
		c.apply()
	}
}

// Revert restores the captured state
func (c *Command[S]) Revert() {
	if c.revert != nil {
		c.revert(c.previous)
	}
}

// Run applies the command, performs call and reverts if call fails
func (c *Command[S]) Run(ctx context.Context, call func(ctx context.Context) error) error {
	c.Apply()
	if err := call(ctx); err != nil {
		c.Revert()
		return err
	}
	return nil
}
