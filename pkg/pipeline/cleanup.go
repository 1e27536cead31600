package pipeline

import (
	"sync"

	"github.com/v2vconvert/v2v-convert/internal/file"
	"github.com/v2vconvert/v2v-convert/internal/logger"
)

// CleanupGuard replaces a global delete_target_on_exit flag plus atexit
// handler with an explicit object owned by the driver. It tracks two
// independent sets of paths: overlays, which are always unlinked on exit
// regardless of how the run ends, and targets, which are unlinked on exit
// only while the guard is still armed. Disarm is called once metadata
// emission succeeds, and affects target cleanup only; overlay cleanup is
// unconditional. The driver is single-threaded; the guard still takes one
// mutex covering all of its fields on every method.
type CleanupGuard struct {
	mu       sync.Mutex
	armed    bool
	overlays []string
	targets  []string
}

// NewCleanupGuard returns a guard that starts armed, matching
// delete_target_on_exit's initial value of true.
func NewCleanupGuard() *CleanupGuard {
	return &CleanupGuard{armed: true}
}

// RegisterOverlay adds path to the set of overlay temp files Run always
// unlinks, independent of Disarm.
func (g *CleanupGuard) RegisterOverlay(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.overlays = append(g.overlays, path)
}

// RegisterTarget adds path to the set of target files Run unlinks only
// while the guard is still armed.
func (g *CleanupGuard) RegisterTarget(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.targets = append(g.targets, path)
}

// Disarm marks the guard as no longer responsible for target cleanup,
// called once after metadata emission succeeds. Overlay cleanup is
// unaffected: overlays are always temp scratch space and are unlinked on
// every exit path.
func (g *CleanupGuard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.armed = false
}

// Run unlinks every registered overlay unconditionally, then every
// registered target if the guard is still armed, skipping anything that
// is a block device at cleanup time. Errors are logged and swallowed: the
// user-visible failure is always the first real error, never a cleanup
// failure. Intended to be deferred once, immediately after construction.
func (g *CleanupGuard) Run() {
	g.mu.Lock()
	armed := g.armed
	overlays := append([]string(nil), g.overlays...)
	targets := append([]string(nil), g.targets...)
	g.mu.Unlock()

	removeAll(overlays)

	if armed {
		removeAll(targets)
	}
}

func removeAll(paths []string) {
	for _, path := range paths {
		isBlockDevice, err := file.IsBlockDevice(path)
		if err != nil {
			logger.Log.Debugf("cleanup: failed to stat (%s), skipping: %v", path, err)
			continue
		}
		if isBlockDevice {
			continue
		}

		file.RemoveIfExists(path)
	}
}
