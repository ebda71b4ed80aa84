// Package goroutine запуск фоновых задач с перехватом паники.
package goroutine

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

// PanicReporter получает перехваченную панику.
type PanicReporter func(task string, recovered any, stack []byte)

func logPanic(task string, recovered any, stack []byte) {
	logger.Log.WithFields(logrus.Fields{
		"task":  task,
		"panic": recovered,
		"stack": string(stack),
	}).Error("goroutine: паника в фоновой задаче")
}

func guard(task string, report PanicReporter) {
	if r := recover(); r != nil {
		report(task, r, debug.Stack())
	}
}

// SafeGo запускает fn в отдельной горутине. Паника пишется в лог и не роняет процесс.
func SafeGo(fn func()) {
	go func() {
		defer guard("", logPanic)
		fn()
	}()
}

// Tracker запускает задачи как SafeGo и умеет дождаться их завершения.
// Нулевое значение готово к работе.
type Tracker struct {
	mu      sync.Mutex
	running int
	// idle закрывается, когда завершается последняя задача
	idle    chan struct{}
	report  PanicReporter
}

// NewTracker создаёт трекер. report равен nil означает запись в общий лог.
func NewTracker(report PanicReporter) *Tracker {
	return &Tracker{report: report}
}

// Go запускает задачу task.
func (t *Tracker) Go(task string, fn func()) {
	report := t.report
	if report == nil {
		report = logPanic
	}

	t.mu.Lock()
	if t.running == 0 {
		t.idle = make(chan struct{})
	}
	t.running++
	t.mu.Unlock()

	go func() {
		defer t.finish()
		defer guard(task, report)
		fn()
	}()
}

func (t *Tracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running--
	if t.running == 0 {
		close(t.idle)
		t.idle = nil
	}
}

// Wait ждёт завершения запущенных задач или отмены ctx.
// Задачи, запущенные во время ожидания, тоже учитываются.
func (t *Tracker) Wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		idle := t.idle
		t.mu.Unlock()
		if idle == nil {
			return nil
		}

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
