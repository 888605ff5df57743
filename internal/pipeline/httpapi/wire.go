package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/designcoil/catalog-import/internal/pipeline"
)

type areaRequest struct {
	Area string `json:"area"`
}

type validateRequest struct {
	Config map[string]any  `json:"config"`
	Source pipeline.Source `json:"source"`
}

type sessionRequest struct {
	Session string `json:"session"`
}

type validateResponse struct {
	Session       string                `json:"session"`
	Result        bool                  `json:"result"`
	ValidatedIDs  []int                 `json:"validated_ids"`
	UniqueBunches bool                  `json:"unique_bunches"`
	Counters      pipeline.Counters     `json:"counters"`
	Errors        *pipeline.Aggregation `json:"errors"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Import stream event kinds.
const (
	eventBunch = "bunch"
	eventDone  = "done"
	eventError = "error"
)

type runEvent struct {
	Event    string                `json:"event"`
	Rows     int                   `json:"rows,omitempty"`
	Result   bool                  `json:"result,omitempty"`
	Counters *pipeline.Counters    `json:"counters,omitempty"`
	Errors   *pipeline.Aggregation `json:"errors,omitempty"`
	Message  string                `json:"message,omitempty"`
}

// eventStream is the BatchSource over an NDJSON import stream. Unknown
// events are skipped.
type eventStream struct {
	dec  *json.Decoder
	seq  int
	done *runEvent
}

func (s *eventStream) NextBunch(ctx context.Context) (*pipeline.Bunch, error) {
	return s.next(ctx)
}

func (s *eventStream) NextUniqueBunch(ctx context.Context) (*pipeline.Bunch, error) {
	return s.next(ctx)
}

func (s *eventStream) next(ctx context.Context) (*pipeline.Bunch, error) {
	if s.done != nil {
		return nil, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var ev runEvent
		if err := s.dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("import stream ended without a result")
			}
			return nil, fmt.Errorf("failed to read import stream; %w", err)
		}

		switch ev.Event {
		case eventBunch:
			s.seq++
			return &pipeline.Bunch{ID: s.seq, Rows: ev.Rows}, nil
		case eventDone:
			s.done = &ev
			return nil, nil
		case eventError:
			return nil, &APIError{Message: ev.Message}
		}
	}
}
