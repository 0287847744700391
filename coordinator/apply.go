package coordinator

// Apply advances the coordinator by one event, atomically: on success the
// returned TickResult describes what happened; on failure the coordinator's
// state is completely unchanged and the returned error identifies why the
// event was rejected (§7 policy: all errors are per-event rejection without
// state mutation).
func (c *Coordinator) Apply(event Event) (TickResult, error) {
	if c.halted {
		if _, ok := event.(FreeCoordinator); !ok {
			c.rejectMetric("halted")
			return TickResult{}, ErrHalted
		}
	}

	switch e := event.(type) {
	case Tick:
		return c.applyTick(e)
	case Join:
		return c.applyJoin(e)
	case Withdraw:
		return c.applyWithdraw(e)
	case WitnessSubmission:
		return c.applyWitnessSubmission(e)
	case HealthCheckSubmission:
		return c.applyHealthCheckSubmission(e)
	case CheckpointSubmission:
		return c.applyCheckpointSubmission(e)
	case SetConfig:
		return c.applySetConfig(e)
	case SetModel:
		return c.applySetModel(e)
	case SetPaused:
		return c.applySetPaused(e)
	case SetFutureEpochRates:
		return c.applySetFutureEpochRates(e)
	case UpdateClientVersion:
		return c.applyUpdateClientVersion(e)
	case FreeCoordinator:
		return c.applyFreeCoordinator(e)
	default:
		c.rejectMetric("unknown_event")
		return TickResult{}, ErrInvalidRunState
	}
}
