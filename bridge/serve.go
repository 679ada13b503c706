package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxEnvelopeSize bounds one line of the Serve protocol.
const MaxEnvelopeSize = 16 << 20

// Serve reads one JSON Envelope per line from r and writes one Response per
// line to w. Envelopes are dispatched concurrently so a generateMould request
// supersedes those still running, whose responses then carry null data.
// Serve returns once r is exhausted and every response is written.
func Serve(ctx context.Context, b *Bridge, r io.Reader, w io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	write := func(resp Response) error {
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(resp)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), MaxEnvelopeSize)
	for sc.Scan() && ctx.Err() == nil {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			Logger().Debug("bad envelope", zap.Error(err))
			if err := write(Reply(env.ID, nil, fmt.Errorf("%w: %w", ErrBadEnvelope, err))); err != nil {
				return err
			}
			continue
		}
		g.Go(func() error {
			data, err := b.Call(ctx, env.Call)
			return write(Reply(env.ID, data, err))
		})
	}
	if err := sc.Err(); err != nil {
		g.Go(func() error { return fmt.Errorf("reading envelopes: %w", err) })
	}
	return g.Wait()
}
