/*
Package playback is the time-synchronization and frame-selection engine.

It converts a continuously advancing host clock into per-clip media positions,
selects the decoded frame for each position, keeps a color stream and its
alpha matte on the same frame number, and sequences clips into a gapless,
optionally looping playlist.

# Components

  - SyncAnchor and Mapper: host time to item time, a pure function of the
    (rate, itemTime, hostTime) triple recorded at SyncStart or SetRate.
  - FrameNumber and Selector: item time to frame number and to one of the two
    buffered frames of a stream.
  - Output: one decode engine, one produce worker, one state machine.
  - AlphaPair: a color Output and an alpha Output driven by identical anchors.
  - Playlist: clip sequencing, loop accounting and lifecycle callbacks.
  - SyncGroup: preroll every participant, then anchor all of them to the
    same future host time.

# Execution contexts

Produce work runs on one worker goroutine per Output and publishes frames
under a single-writer lock. Everything else, including every callback handed
to this package, runs on the presentation context: the goroutine that calls
Tick, FrameForHostTime and Queue.Drain. Engine notifications are posted to the
Queue and only run when the presentation context drains it.

# Basic Usage

	queue := playback.NewQueue()
	clock := hostclock.New()

	out := playback.NewOutput(engine, clock, queue, log)
	list, err := playback.NewPlaylist([]playback.Source{out}, clock, queue, log,
		playback.WithLoopMaxCount(playback.LoopForever))
	if err != nil {
		return err
	}
	list.Load()
	list.Play()

	for tick := range driver.Ticks(ctx) {
		cmd := list.Tick(tick.HostTime, tick.PresentationTime)
		if cmd.Fresh {
			draw(cmd.Frame)
		}
		if cmd.Finished {
			break
		}
	}
*/
package playback
