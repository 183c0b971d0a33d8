package server

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"sync"

	"gocv.io/x/gocv"
)

// FrameHub serves the latest annotated frame as an MJPEG stream. Frames are
// only encoded while someone is watching.
type FrameHub struct {
	mu      sync.Mutex
	jpeg    []byte
	updated chan struct{}
	viewers int
}

// NewFrameHub creates an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{updated: make(chan struct{})}
}

// Viewers returns the number of connected stream clients.
func (h *FrameHub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewers
}

// PublishFrame encodes img as JPEG for the stream clients.
func (h *FrameHub) PublishFrame(img *gocv.Mat) {
	if h.Viewers() == 0 {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *img)
	if err != nil {
		log.Printf("encode stream frame: %v", err)
		return
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	h.PublishJPEG(data)
}

// PublishJPEG replaces the current frame and wakes every stream client.
func (h *FrameHub) PublishJPEG(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.jpeg = data
	close(h.updated)
	h.updated = make(chan struct{})
}

// next returns the channel closed by the next publish.
func (h *FrameHub) next() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updated
}

func (h *FrameHub) current() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jpeg
}

func (h *FrameHub) join(delta int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers += delta
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.join(1)
	defer h.join(-1)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.next():
		}

		frame := h.current()

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
