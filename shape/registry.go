package shape

import (
	"context"
	"net/http"

	"github.com/BaSui01/shaperunner/codec"
	"github.com/BaSui01/shaperunner/runner"
	"github.com/BaSui01/shaperunner/types"
)

// Handler executes one run request for a single shape: decode input, run the
// attempt loop, encode output.
type Handler func(ctx context.Context, c codec.Codec, input []byte) ([]byte, error)

// Registry maps task identifiers to handlers. It is populated once at
// startup and read-only afterwards, so concurrent lookups need no locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to a task identifier.
func (r *Registry) Register(id string, h Handler) {
	r.handlers[id] = h
}

// Handler looks up the handler for a task identifier.
func (r *Registry) Handler(id string) (Handler, bool) {
	h, ok := r.handlers[id]
	return h, ok
}

// IDs lists the registered task identifiers.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	return ids
}

// RegisterDefaults registers the built-in shapes against a runner.
func RegisterDefaults(reg *Registry, run *runner.Runner) {
	reg.Register(FeatureDesignID, FeatureDesignHandler(run))
	reg.Register(FormationID, FormationHandler(run))
}

// FeatureDesignHandler builds the handler for the feature design shape.
func FeatureDesignHandler(run *runner.Runner) Handler {
	return func(ctx context.Context, c codec.Codec, input []byte) ([]byte, error) {
		var in FeatureDesignInput
		if err := c.Decode(input, &in); err != nil {
			return nil, decodeError(err)
		}

		out, err := runner.Run(ctx, run, runner.Task[FeatureDesignOutput]{
			Shape:   FeatureDesignID,
			Schema:  featureDesignDef,
			Context: featureDesignContext(in),
		})
		if err != nil {
			return nil, err
		}
		return encode(c, out)
	}
}

// FormationHandler builds the handler for the formation shape.
func FormationHandler(run *runner.Runner) Handler {
	return func(ctx context.Context, c codec.Codec, input []byte) ([]byte, error) {
		var in FormationInput
		if err := c.Decode(input, &in); err != nil {
			return nil, decodeError(err)
		}

		out, err := runner.Run(ctx, run, runner.Task[FormationOutput]{
			Shape:   FormationID,
			Schema:  formationDef,
			Context: formationContext(in),
			Check:   checkCoordinateCount(in.UnitCount),
		})
		if err != nil {
			return nil, err
		}
		return encode(c, out)
	}
}

func decodeError(err error) error {
	return types.NewError(types.ErrDecodeFailed, "failed to decode input payload").
		WithHTTPStatus(http.StatusBadRequest).WithCause(err)
}

func encode(c codec.Codec, v any) ([]byte, error) {
	data, err := c.Encode(v)
	if err != nil {
		return nil, types.NewError(types.ErrEncodeFailed, "failed to encode output payload").
			WithHTTPStatus(http.StatusInternalServerError).WithCause(err)
	}
	return data, nil
}
