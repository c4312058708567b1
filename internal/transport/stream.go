package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/pdrpinto/gridplanner/internal/msgs"
)

// StreamPublisher writes each path as one JSON line.
type StreamPublisher struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func NewStreamPublisher(w io.Writer) *StreamPublisher {
	return &StreamPublisher{encoder: json.NewEncoder(w)}
}

func (p *StreamPublisher) Publish(_ context.Context, path msgs.Path) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.encoder.Encode(path); err != nil {
		return fmt.Errorf("write path: %w", err)
	}
	return nil
}
