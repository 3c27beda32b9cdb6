/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textedit

import (
	"sync"
	"time"
)

// Viewport is the host surface that must not scroll or zoom while the
// on-screen keyboard is up.
type Viewport interface {
	Lock()
	Unlock()
}

// ViewportLock is a held Viewport. Release is safe to call any number of
// times and from any exit path; the viewport is unlocked exactly once.
type ViewportLock struct {
	v    Viewport
	once sync.Once
	mu   sync.Mutex
	held bool
}

// AcquireViewport locks v. A nil Viewport yields a lock that does nothing.
func AcquireViewport(v Viewport) *ViewportLock {
	l := &ViewportLock{v: v, held: true}
	if v != nil {
		v.Lock()
	}
	return l
}

func (l *ViewportLock) Release() {
	l.once.Do(func() {
		l.mu.Lock()
		l.held = false
		l.mu.Unlock()
		if l.v != nil {
			l.v.Unlock()
		}
	})
}

func (l *ViewportLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Poller runs a probe repeatedly until it reports completion, the hard
// timeout passes, or it is stopped.
type Poller struct {
	sched    Scheduler
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	gen     int
	timer   Timer
	elapsed time.Duration
	running bool
}

func NewPoller(s Scheduler, interval, timeout time.Duration) *Poller {
	if s == nil {
		s = SystemScheduler{}
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Poller{sched: s, interval: interval, timeout: timeout}
}

// Start begins polling; an earlier run is stopped first. probe returns true
// when there is nothing left to wait for. done, if set, is told whether the
// run ended by timeout.
func (p *Poller) Start(probe func() bool, done func(timedOut bool)) {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.elapsed = 0
	p.running = true
	p.timer = p.sched.AfterFunc(p.interval, func() { p.tick(gen, probe, done) })
	p.mu.Unlock()
}

func (p *Poller) tick(gen int, probe func() bool, done func(bool)) {
	p.mu.Lock()
	if !p.running || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.elapsed += p.interval
	p.mu.Unlock()

	finished := probe()

	p.mu.Lock()
	if !p.running || gen != p.gen {
		p.mu.Unlock()
		return
	}
	timedOut := !finished && p.elapsed >= p.timeout
	if finished || timedOut {
		p.running = false
		p.timer = nil
		p.mu.Unlock()
		if done != nil {
			done(timedOut)
		}
		return
	}
	p.timer = p.sched.AfterFunc(p.interval, func() { p.tick(gen, probe, done) })
	p.mu.Unlock()
}

// Stop cancels polling. It is safe to call when not running.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Deferred runs one callback later, but only while alive reports true at the
// moment it fires. Scheduling again replaces a pending callback.
type Deferred struct {
	sched Scheduler
	alive func() bool

	mu    sync.Mutex
	timer Timer
}

func NewDeferred(s Scheduler, alive func() bool) *Deferred {
	if s == nil {
		s = SystemScheduler{}
	}
	return &Deferred{sched: s, alive: alive}
}

func (d *Deferred) Run(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	var t Timer
	t = d.sched.AfterFunc(delay, func() {
		d.mu.Lock()
		current := d.timer == t
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if !current || (d.alive != nil && !d.alive()) {
			return
		}
		fn()
	})
	d.timer = t
}

// Cancel drops a pending callback.
func (d *Deferred) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a callback is waiting to fire.
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
