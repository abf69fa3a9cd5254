package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/elimethod/eli.go/eli"
)

const (
	thoughtInterval  = 2 * time.Second
	dreamEvery       = 20  // LLM guides every Nth thought while dreaming
	autosaveEvery    = 100 // background iterations between saves
	thoughtIntensity = 0.05
	dreamIntensity   = 0.1
)

// spawnBackgroundThought runs the idle loop: every cycle it tries, without
// blocking, to generate one background thought and feed it back in at very
// low intensity. If the mind is held by the foreground the cycle is
// skipped — idle thought is best-effort by contract.
func spawnBackgroundThought(mind *eli.Mind, llm *LLMBridge, dreaming *atomic.Bool, statePath string, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(thoughtInterval)
		defer ticker.Stop()

		iteration := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			iteration++

			thought, ok := mind.TryThink()
			if !ok {
				continue // mind busy, drop the cycle
			}

			if dreaming.Load() && iteration%dreamEvery == 0 {
				if guidance, err := llm.TranslateSymbols(thought, "dreaming"); err == nil {
					short := guidance
					if len(short) > 60 {
						short = short[:60]
					}
					fmt.Printf("\n💭 dream: %s\n\n", short)
					mind.TryProcessWithIntensity(guidance, dreamIntensity)
				} else {
					mind.TryProcessWithIntensity(thought, thoughtIntensity)
				}
			} else if thought != "" {
				mind.TryProcessWithIntensity(thought, thoughtIntensity)
			}

			if iteration%autosaveEvery == 0 {
				if err := mind.Save(statePath); err != nil {
					fmt.Printf("autosave failed: %v\n", err)
				}
			}
		}
	}()
}
