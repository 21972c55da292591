// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"context"
	"fmt"
)

// DocTestCase adapts a DocTest to a setup/run/teardown test lifecycle.
//
// TearDown clears the test's namespace after the optional hook has run, so
// every case starts from whatever its SetUp provides. Callers that want state
// to survive between cases must provide their own teardown.
type DocTestCase struct {
	Test   *DocTest
	Runner *Runner
	// SetUpFunc runs before the examples, if set.
	SetUpFunc func(ctx context.Context, test *DocTest) error
	// TearDownFunc runs after the examples, if set.
	TearDownFunc func(ctx context.Context, test *DocTest) error
}

// ID returns the test name.
func (c *DocTestCase) ID() string {
	return c.Test.Name
}

// SetUp runs the setup hook.
func (c *DocTestCase) SetUp(ctx context.Context) error {
	if c.SetUpFunc == nil {
		return nil
	}
	if err := c.SetUpFunc(ctx, c.Test); err != nil {
		return fmt.Errorf("setting up %s: %w", c.Test.Name, err)
	}
	return nil
}

// Run executes the examples and folds any failure into the returned error.
func (c *DocTestCase) Run(ctx context.Context) error {
	res, err := c.Runner.Run(ctx, c.Test)
	if err != nil {
		return err
	}
	return res.Err(c.Test)
}

// TearDown runs the teardown hook, then clears the namespace.
func (c *DocTestCase) TearDown(ctx context.Context) error {
	var err error
	if c.TearDownFunc != nil {
		if hookErr := c.TearDownFunc(ctx, c.Test); hookErr != nil {
			err = fmt.Errorf("tearing down %s: %w", c.Test.Name, hookErr)
		}
	}
	if c.Test.Globs != nil {
		c.Test.Globs.Clear()
	}
	return err
}
