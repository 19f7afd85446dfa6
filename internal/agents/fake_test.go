package agents

import (
	"context"
	"errors"
	"sync"
)

type fakeCall struct {
	Model string
	Req   Request
}

// fakeProvider answers per model from a queue, falling back to a default
type fakeProvider struct {
	mu        sync.Mutex
	responses map[string][]string
	errs      map[string]error
	calls     []fakeCall
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		responses: make(map[string][]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeProvider) respond(model string, raw ...string) *fakeProvider {
	f.responses[model] = append(f.responses[model], raw...)
	return f
}

func (f *fakeProvider) fail(model string, err error) *fakeProvider {
	f.errs[model] = err
	return f
}

func (f *fakeProvider) Complete(ctx context.Context, model string, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{Model: model, Req: req})
	if err := f.errs[model]; err != nil {
		return "", err
	}
	queue := f.responses[model]
	if len(queue) == 0 {
		return "", errors.New("no response queued")
	}
	raw := queue[0]
	if len(queue) > 1 {
		f.responses[model] = queue[1:]
	}
	return raw, nil
}

func (f *fakeProvider) models() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Model)
	}
	return out
}
