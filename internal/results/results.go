package results

import (
	"sync"
	"sync/atomic"
)

// Results collects the output of a decode run. Frames and markers are staged until the
// packet that contains them is committed, so readers only ever observe complete cycles.
// All methods are safe for concurrent use by one writer and any number of readers.
type Results struct {
	mu sync.RWMutex

	frames  []Frame
	markers []Marker
	packets []Packet

	pendingFrames  []Frame
	pendingMarkers []Marker

	progress atomic.Uint64
}

// New returns an empty result set.
func New() *Results {
	return &Results{}
}

// AddFrame stages a frame for the current packet.
func (r *Results) AddFrame(frame Frame) {
	r.mu.Lock()
	r.pendingFrames = append(r.pendingFrames, frame)
	r.mu.Unlock()
}

// AddMarker stages a marker for the current packet.
func (r *Results) AddMarker(marker Marker) {
	r.mu.Lock()
	r.pendingMarkers = append(r.pendingMarkers, marker)
	r.mu.Unlock()
}

// CommitPacket publishes all staged frames and markers and closes the current packet.
// Committing without staged frames does not create a packet.
func (r *Results) CommitPacket() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.markers = append(r.markers, r.pendingMarkers...)
	r.pendingMarkers = r.pendingMarkers[:0]

	if len(r.pendingFrames) == 0 {
		return
	}

	first := len(r.frames)
	r.frames = append(r.frames, r.pendingFrames...)
	r.pendingFrames = r.pendingFrames[:0]

	r.packets = append(r.packets, Packet{
		ID:         uint64(len(r.packets)),
		FirstFrame: first,
		LastFrame:  len(r.frames) - 1,
	})
}

// ReportProgress advances the progress to the given sample. Progress never decreases.
func (r *Results) ReportProgress(sample uint64) {
	for {
		current := r.progress.Load()
		if sample <= current {
			return
		}
		if r.progress.CompareAndSwap(current, sample) {
			return
		}
	}
}

// Progress returns the highest sample reported so far.
func (r *Results) Progress() uint64 {
	return r.progress.Load()
}

// Frames returns a copy of all committed frames.
func (r *Results) Frames() []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	frames := make([]Frame, len(r.frames))
	copy(frames, r.frames)
	return frames
}

// Markers returns a copy of all committed markers.
func (r *Results) Markers() []Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	markers := make([]Marker, len(r.markers))
	copy(markers, r.markers)
	return markers
}

// Packets returns a copy of all committed packets.
func (r *Results) Packets() []Packet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	packets := make([]Packet, len(r.packets))
	copy(packets, r.packets)
	return packets
}

// PacketFrames returns the frames of the given packet.
func (r *Results) PacketFrames(packet Packet) []Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if packet.FirstFrame < 0 || packet.LastFrame >= len(r.frames) || packet.FirstFrame > packet.LastFrame {
		return nil
	}
	frames := make([]Frame, packet.LastFrame-packet.FirstFrame+1)
	copy(frames, r.frames[packet.FirstFrame:packet.LastFrame+1])
	return frames
}

// Counts returns the number of committed frames, packets and markers.
func (r *Results) Counts() (frames, packets, markers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames), len(r.packets), len(r.markers)
}
