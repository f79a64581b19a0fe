package tune

import (
	"context"
	"fmt"

	"github.com/runningwild/rrtune/pkg/fio"
)

// Test doubles for the three external collaborators. Each appends to a
// shared event log so tests can assert on the exact order of side effects
// within and across trials.

type fakeStore struct {
	values map[string]int
	log    *[]string
	failOn func(name string, value int) error
}

func (s *fakeStore) SetTunable(name string, value int) error {
	if s.failOn != nil {
		if err := s.failOn(name, value); err != nil {
			return err
		}
	}
	if s.values == nil {
		s.values = make(map[string]int)
	}
	s.values[name] = value
	if s.log != nil {
		*s.log = append(*s.log, fmt.Sprintf("set %s=%d", name, value))
	}
	return nil
}

type fakeDropper struct {
	calls int
	log   *[]string
	err   error
}

func (d *fakeDropper) DropCaches() error {
	if d.err != nil {
		return d.err
	}
	d.calls++
	if d.log != nil {
		*d.log = append(*d.log, "drop")
	}
	return nil
}

type fakeRunner struct {
	calls     int
	fileCalls int
	log       *[]string
	sampleFn  func(job fio.Job) (fio.Sample, error)
	fileFn    func(path string) (fio.Sample, error)
}

func (r *fakeRunner) Run(_ context.Context, job fio.Job) (fio.Sample, error) {
	r.calls++
	if r.log != nil {
		*r.log = append(*r.log, "run")
	}
	if r.sampleFn == nil {
		return fio.Sample{PerJob: []int64{1}}, nil
	}
	return r.sampleFn(job)
}

func (r *fakeRunner) RunFile(_ context.Context, path string) (fio.Sample, error) {
	r.fileCalls++
	if r.log != nil {
		*r.log = append(*r.log, "runfile")
	}
	if r.fileFn == nil {
		return fio.Sample{PerJob: []int64{1}}, nil
	}
	return r.fileFn(path)
}
