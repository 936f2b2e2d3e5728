// Copyright 2024 The Ampiato Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package trace implements the frame stack used to capture which quantities
// a derived function read while it was being evaluated. A derived function
// pushes a frame before it runs, every read it performs (directly or through
// a nested derived call) records into the innermost open frame, and popping
// the frame yields the exact set of dependencies to wire into the graph.
package trace

import "github.com/ampiato/tem/internal/graph"

// Stack is the dependency-capture frame stack for a single evaluator.
type Stack struct {
	frames []map[graph.Handle]struct{}
}

// NewStack returns an empty frame stack.
func NewStack() *Stack {
	return &Stack{}
}

// EnterFrame pushes a new, empty frame.
func (s *Stack) EnterFrame() {
	s.frames = append(s.frames, make(map[graph.Handle]struct{}))
}

// RecordDep records h as read during the innermost open frame. If no frame
// is open (a top-level read outside of any RegisterFn call), this is a
// no-op: there's nothing accumulating dependencies to record into.
func (s *Stack) RecordDep(h graph.Handle) {
	if len(s.frames) == 0 {
		return
	}
	s.frames[len(s.frames)-1][h] = struct{}{}
}

// LeaveFrame pops the innermost frame and returns the set of handles
// recorded into it. It panics if no frame is open; EnterFrame/LeaveFrame
// calls must be balanced by the caller.
func (s *Stack) LeaveFrame() map[graph.Handle]struct{} {
	n := len(s.frames)
	top := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return top
}

// Depth reports the number of currently open frames.
func (s *Stack) Depth() int {
	return len(s.frames)
}
