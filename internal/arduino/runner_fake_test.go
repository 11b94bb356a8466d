package arduino

import "context"

// fakeRunner records invocations and answers them through a handler, so
// orchestration logic runs without the real toolchain.
type fakeRunner struct {
	calls   [][]string
	handler func(args []string) (Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (Result, error) {
	copied := append([]string(nil), args...)
	f.calls = append(f.calls, copied)
	if f.handler != nil {
		return f.handler(copied)
	}
	return Result{}, nil
}

func (f *fakeRunner) lastCall() []string {
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}
