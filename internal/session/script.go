package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/dispatcher"
	"github.com/kunalpal97/ar-indoor-nav/internal/parser"
	"github.com/kunalpal97/ar-indoor-nav/internal/tracking"
)

// Play applies script steps to the simulator and the session in order. Touch
// steps go through the loop like real input; wait steps sleep unless ctx ends.
// Play returns once the last step has been applied, without waiting for
// attachments.
func (s *Session) Play(ctx context.Context, sim *tracking.Simulator, steps []parser.Step) error {
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch st.Op {
		case parser.OpPose:
			sim.SetPose(st.Pose)
		case parser.OpState:
			sim.SetTrackingState(st.State)
		case parser.OpSession:
			sim.SetSessionActive(st.Active)
		case parser.OpNoFrame:
			sim.ClearFrame()
		case parser.OpTouch:
			ev := st.Touch
			ev.Time = s.deps.Now()
			// each touch must see the pose set by the steps before it
			if err := s.Touch(ev); err != nil {
				return fmt.Errorf("line %d: %w", st.Line, err)
			}
			if err := s.barrier(ctx); err != nil {
				return fmt.Errorf("line %d: %w", st.Line, err)
			}
		case parser.OpWait:
			select {
			case <-time.After(st.Wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			return fmt.Errorf("line %d: unsupported step %s", st.Line, st.Op)
		}
	}
	return nil
}

func (s *Session) barrier(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := s.loop.Dispatch(dispatcher.Event{Command: CmdBarrier})
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
