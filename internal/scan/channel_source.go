package scan

import (
	"context"
	"io"
	"sync"
)

// ChannelSource feeds codes from a channel. It stands in for a device in
// the replay tool and in tests. Closing the channel ends the session.
type ChannelSource struct {
	codes <-chan string

	mu       sync.Mutex
	acquired int
	released int
}

func NewChannelSource(codes <-chan string) *ChannelSource {
	return &ChannelSource{codes: codes}
}

func (c *ChannelSource) Acquire(context.Context) (Reader, error) {
	c.mu.Lock()
	c.acquired++
	c.mu.Unlock()
	return &channelReader{source: c}, nil
}

// Held reports whether an acquired reader has not been closed yet.
func (c *ChannelSource) Held() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquired > c.released
}

type channelReader struct {
	source *ChannelSource
	once   sync.Once
}

func (r *channelReader) Read(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case code, ok := <-r.source.codes:
		if !ok {
			return "", io.EOF
		}
		return code, nil
	}
}

func (r *channelReader) Close() error {
	r.once.Do(func() {
		r.source.mu.Lock()
		r.source.released++
		r.source.mu.Unlock()
	})
	return nil
}
