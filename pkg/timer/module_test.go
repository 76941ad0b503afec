package timer

import (
	"testing"
	"time"
)

func TestAfterFunc(t *testing.T) {
	fired := make(chan struct{})
	tm := AfterFunc(5*time.Millisecond, func() { close(fired) })
	if !tm.Start() {
		t.Fatal("could not start timer")
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	if tm.Start() {
		t.Error("expired timer should not start again")
	}
}

func TestPauseKeepsRemainder(t *testing.T) {
	tm := NewTimer(time.Hour)
	tm.Start()
	if !tm.Pause() {
		t.Fatal("could not pause running timer")
	}
	if !tm.Paused() {
		t.Error("timer should report paused")
	}
	left := tm.TimeLeft()
	if left <= 0 || left > time.Hour {
		t.Errorf("unexpected time left after pause: %v", left)
	}
	if tm.Pause() {
		t.Error("pausing an idle timer should fail")
	}
}

func TestStop(t *testing.T) {
	tm := NewTimer(time.Hour)
	tm.Start()
	if !tm.Stop() {
		t.Fatal("could not stop running timer")
	}
	if tm.TimeLeft() != 0 {
		t.Error("stopped timer should have no time left")
	}
	if tm.Stop() {
		t.Error("stopping twice should fail")
	}
}

func TestNilTimeLeft(t *testing.T) {
	var tm *Timer
	if tm.TimeLeft() != 0 {
		t.Error("nil timer should report zero time left")
	}
}

func TestSetTimeLeft(t *testing.T) {
	tm := NewTimer(time.Hour)
	if !tm.SetTimeLeft(time.Minute) {
		t.Fatal("could not adjust idle timer")
	}
	if tm.TimeLeft() != time.Minute {
		t.Errorf("expected one minute left, got %v", tm.TimeLeft())
	}
	tm.Start()
	tm.Stop()
	if tm.SetTimeLeft(time.Minute) {
		t.Error("adjusting an expired timer should fail")
	}
}
