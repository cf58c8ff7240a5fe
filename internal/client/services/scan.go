package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jpalacios/herbascan/internal/client/qr"
)

// Scan is one accepted scan event. Payload is nil when the text did not
// parse — an explicit "invalid code" outcome, distinct from an empty label.
type Scan struct {
	ID      string
	Raw     string
	Payload *qr.Payload
}

// ScanController enforces the single-flight rule: at most one unresolved
// scan is live at a time. Camera deliveries while a scan is live are
// discarded, not queued, until the scan/modal cycle is explicitly reset.
//
// The guard is a one-slot channel semaphore; Submit does a non-blocking
// acquire, so duplicate deliveries of the same text (the camera fires
// repeatedly while the code is in frame) collapse into one event.
type ScanController struct {
	slot chan struct{}

	mu      sync.Mutex
	current *Scan
}

func NewScanController() *ScanController {
	return &ScanController{slot: make(chan struct{}, 1)}
}

// Submit offers raw scanned text. Returns (scan, true) when this delivery
// was accepted as the live scan, or (nil, false) when a scan is already live
// and the delivery was ignored. Parsing is synchronous and has no side
// effects beyond recording the result.
func (c *ScanController) Submit(raw string) (*Scan, bool) {
	select {
	case c.slot <- struct{}{}:
	default:
		return nil, false
	}

	payload, ok := qr.Parse(raw)
	if !ok {
		payload = nil
	}

	scan := &Scan{ID: uuid.NewString(), Raw: raw, Payload: payload}

	c.mu.Lock()
	c.current = scan
	c.mu.Unlock()

	return scan, true
}

// Current returns the live scan, or nil when none is open.
func (c *ScanController) Current() *Scan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Busy reports whether a scan is live.
func (c *ScanController) Busy() bool {
	return c.Current() != nil
}

// Reset closes the current scan/modal cycle and re-arms the controller. The
// discarded payload is never merged with the next one. Safe to call when no
// scan is live.
func (c *ScanController) Reset() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()

	select {
	case <-c.slot:
	default:
	}
}
