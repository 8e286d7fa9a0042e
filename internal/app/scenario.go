package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/NetPo4ki/go-shared/scope"
	"github.com/NetPo4ki/go-shared/shared"
)

// Report summarizes one scenario run.
type Report struct {
	Scenario  string
	Workers   int
	Completed int
	Failed    int
	// Result is the final value of the shared container.
	Result string
	// Consistent is set when Result is what the workers' mutations must
	// produce under any scheduling.
	Consistent bool
	Duration   time.Duration
}

// Write prints the report as one line of key=value pairs.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "scenario=%s workers=%d completed=%d failed=%d consistent=%t result=%q duration=%s\n",
		r.Scenario, r.Workers, r.Completed, r.Failed, r.Consistent, r.Result, r.Duration)
}

func (r *Report) count(outs []scope.Outcome) {
	for _, out := range outs {
		if out.OK() {
			r.Completed++
		} else {
			r.Failed++
		}
	}
}

// RunCounter spawns n workers on s that each add one to a counter starting
// at zero, joins them, and reads the final value as the sole holder.
func RunCounter(s *scope.Scope, n int, opts ...shared.Option) (Report, error) {
	start := time.Now()
	c := shared.New(0, opts...)
	defer c.Release()
	for i := 0; i < n; i++ {
		scope.GoShared(s, c, func(_ context.Context, h *shared.Container[int]) error {
			return h.With(func(v *int) { *v++ })
		})
	}
	rep := Report{Scenario: "counter", Workers: n}
	outs, err := s.JoinAll(s.Handles()...)
	if err != nil {
		return rep, err
	}
	rep.count(outs)
	v, err := c.Value()
	if err != nil {
		return rep, err
	}
	rep.Result = strconv.Itoa(v)
	rep.Consistent = v == rep.Completed && rep.Failed == 0
	rep.Duration = time.Since(start)
	return rep, nil
}

// RunAppend spawns n workers on s; worker i appends "-i" to a string that
// starts as seed. Every suffix must appear exactly once, in any order.
func RunAppend(s *scope.Scope, seed string, n int, opts ...shared.Option) (Report, error) {
	start := time.Now()
	c := shared.New(seed, opts...)
	defer c.Release()
	for i := 0; i < n; i++ {
		suffix := "-" + strconv.Itoa(i)
		scope.GoShared(s, c, func(_ context.Context, h *shared.Container[string]) error {
			return h.With(func(v *string) { *v += suffix })
		})
	}
	rep := Report{Scenario: "append", Workers: n}
	outs, err := s.JoinAll(s.Handles()...)
	if err != nil {
		return rep, err
	}
	rep.count(outs)
	v, err := c.Value()
	if err != nil {
		return rep, err
	}
	rep.Result = v
	rep.Consistent = rep.Failed == 0 && appendConsistent(v, seed, n)
	rep.Duration = time.Since(start)
	return rep, nil
}

// appendConsistent reports whether v is seed followed by "-0" … "-<n-1>" in
// some order.
func appendConsistent(v, seed string, n int) bool {
	rest, ok := strings.CutPrefix(v, seed)
	if !ok {
		return false
	}
	if n == 0 {
		return rest == ""
	}
	if !strings.HasPrefix(rest, "-") {
		return false
	}
	parts := strings.Split(rest[1:], "-")
	if len(parts) != n {
		return false
	}
	ids := make([]int, 0, n)
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for i, id := range ids {
		if id != i {
			return false
		}
	}
	return true
}
