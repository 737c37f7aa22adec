package scenic

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

type (
	// StepHook is called synchronously after each step has been judged and appended to memory.
	// A returned error or a panic is logged and does not stop the run.
	StepHook func(ctx context.Context, step Step) error
)

func defaultStepHook(ctx context.Context, step Step) error {
	return nil
}

func callStepHook(ctx context.Context, hook StepHook, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = goerr.New("step hook panicked", goerr.V("panic", fmt.Sprint(r)))
		}
	}()
	return hook(ctx, step)
}
