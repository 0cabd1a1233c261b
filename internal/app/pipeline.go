package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
)

// runPipeline is the main detection loop. It idles at a low frame rate
// until motion is seen, then runs hand tracking and gesture
// recognition at the active rate until motion stops again.
func (a *App) runPipeline(stopCh chan struct{}) {
	ctx := context.Background()

	activeMode := false
	lastMotion := time.Now()

	interval := time.Second / time.Duration(a.config.IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			tickStart := time.Now()

			frame, err := a.camera.Read()
			if err != nil {
				a.log.Warn(ctx, "reading frame", logger.Error(err))
				continue
			}

			moving, _ := a.motion.Detect(frame)
			if moving {
				lastMotion = time.Now()
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(a.config.ActiveFPS)
					interval = time.Second / time.Duration(a.config.ActiveFPS)
					ticker.Reset(interval)
					metrics.SetCaptureFPS(float64(a.config.ActiveFPS))
					a.log.Debug(ctx, "switched to active mode")
				}
			} else if activeMode && time.Since(lastMotion) > idleTimeoutMS*time.Millisecond {
				activeMode = false
				a.camera.SetFPS(a.config.IdleFPS)
				interval = time.Second / time.Duration(a.config.IdleFPS)
				ticker.Reset(interval)
				metrics.SetCaptureFPS(float64(a.config.IdleFPS))
				a.log.Debug(ctx, "switched to idle mode")
			}

			if !activeMode {
				frame.Close()
				continue
			}

			result, err := a.tracker.Track(frame, time.Now())
			frame.Close()
			if err != nil {
				a.log.Warn(ctx, "tracking hand", logger.Error(err))
				continue
			}

			metrics.RecordFrameProcessed()
			metrics.SetHandPresent(result.Hand != nil)
			if result.Hand == nil {
				metrics.RecordFrameDiscarded()
			}

			a.mu.RLock()
			session := a.session
			a.mu.RUnlock()

			event := session.Process(result)
			metrics.RecordTickLatency(float64(time.Since(tickStart).Microseconds()) / 1000.0)

			if event != nil {
				a.handleEvent(ctx, event)
			}
		}
	}
}

// handleEvent fires the bound trigger and persists the event. Trigger
// execution runs off the pipeline goroutine so a slow action cannot
// stall detection.
func (a *App) handleEvent(ctx context.Context, event *gesture.Event) {
	metrics.RecordGestureEvent(event.KindName)
	a.log.Info(ctx, "gesture detected",
		logger.String("kind", event.KindName),
		logger.Float64("confidence", event.Confidence))

	go func() {
		triggerName, triggerErr := "", error(nil)
		if a.config.Dispatcher != nil {
			triggerName, triggerErr = a.config.Dispatcher.Dispatch(context.Background(), event)
		}

		rec := store.EventRecord{
			ID:          event.ID,
			Kind:        event.KindName,
			Confidence:  event.Confidence,
			DetectedAt:  event.Timestamp,
			TriggerName: triggerName,
			TriggerOK:   triggerErr == nil,
		}

		if a.config.Store != nil {
			if err := a.config.Store.Events().Insert(&rec); err != nil {
				a.log.Error(context.Background(), "persisting event", logger.Error(err))
			}
		}

		a.notify(rec)
	}()
}
