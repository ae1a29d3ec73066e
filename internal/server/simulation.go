package server

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/magefree/mage-sim/internal/game/engine"
	"github.com/magefree/mage-sim/internal/simulation"
)

const (
	// SimulationServiceName is the fully qualified gRPC service name.
	SimulationServiceName = "magesim.v1.Simulation"
	// SimulateMethod is the full method name of Simulate.
	SimulateMethod = "/" + SimulationServiceName + "/Simulate"

	// MaxGamesPerRequest bounds the games one Simulate call may ask for.
	MaxGamesPerRequest = 10000
)

// SimulationServer is the server API of the simulation service.
//
// Requests and responses are google.protobuf.Struct messages. Request fields
// (all optional): games, seed, strategy, max_turns, illegal_action_policy.
// Seeds are returned as strings since they do not fit a JSON number.
type SimulationServer interface {
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSimulationServer registers srv on s.
func RegisterSimulationServer(s grpc.ServiceRegistrar, srv SimulationServer) {
	s.RegisterService(&simulationServiceDesc, srv)
}

var simulationServiceDesc = grpc.ServiceDesc{
	ServiceName: SimulationServiceName,
	HandlerType: (*SimulationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: simulateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "magesim/v1/simulation.proto",
}

func simulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulationServer).Simulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SimulateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulationServer).Simulate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SimulationClient calls the simulation service.
type SimulationClient struct {
	cc grpc.ClientConnInterface
}

// NewSimulationClient returns a client using cc.
func NewSimulationClient(cc grpc.ClientConnInterface) *SimulationClient {
	return &SimulationClient{cc: cc}
}

// Simulate runs a simulation on the server.
func (c *SimulationClient) Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SimulateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SimulationService runs simulations on behalf of remote callers.
type SimulationService struct {
	base     simulation.Config
	logger   *zap.Logger
	sink     simulation.Sink
	observer simulation.Observer
}

// NewSimulationService returns a service whose requests override base.
// sink and observer may be nil.
func NewSimulationService(base simulation.Config, sink simulation.Sink, observer simulation.Observer, logger *zap.Logger) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationService{base: base, logger: logger, sink: sink, observer: observer}
}

// Simulate implements SimulationServer.
func (s *SimulationService) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cfg, err := s.configFor(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var opts []simulation.Option
	if s.sink != nil {
		opts = append(opts, simulation.WithSink(s.sink))
	}
	if s.observer != nil {
		opts = append(opts, simulation.WithObserver(s.observer))
	}
	runner, err := simulation.NewRunner(cfg, s.logger, opts...)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, err := runner.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		return nil, status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return nil, status.Error(codes.DeadlineExceeded, err.Error())
	case err != nil:
		s.logger.Error("simulation failed", zap.Error(err))
		return nil, status.Errorf(codes.Internal, "simulation failed: %v", err)
	}

	resp, err := reportToStruct(report)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode report: %v", err)
	}
	return resp, nil
}

func (s *SimulationService) configFor(req *structpb.Struct) (simulation.Config, error) {
	cfg := s.base
	fields := req.GetFields()

	if v, ok := fields["games"]; ok {
		n, err := intValue("games", v)
		if err != nil {
			return cfg, err
		}
		if n <= 0 || n > MaxGamesPerRequest {
			return cfg, fmt.Errorf("games must be between 1 and %d", MaxGamesPerRequest)
		}
		cfg.Games = int(n)
	}
	if v, ok := fields["seed"]; ok {
		n, err := intValue("seed", v)
		if err != nil {
			return cfg, err
		}
		cfg.Seed = n
	}
	if v, ok := fields["max_turns"]; ok {
		n, err := intValue("max_turns", v)
		if err != nil {
			return cfg, err
		}
		if n <= 0 {
			return cfg, errors.New("max_turns must be positive")
		}
		cfg.MaxTurns = int(n)
	}
	if v, ok := fields["strategy"]; ok {
		cfg.Strategy = v.GetStringValue()
	}
	if v, ok := fields["illegal_action_policy"]; ok {
		policy, err := engine.ParseIllegalActionPolicy(v.GetStringValue())
		if err != nil {
			return cfg, err
		}
		cfg.Policy = policy
	}
	return cfg, nil
}

// intValue reads an integer from a number or a decimal string.
func intValue(name string, v *structpb.Value) (int64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int64(f), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}

func reportToStruct(report *simulation.Report) (*structpb.Struct, error) {
	wins := make(map[string]any, len(report.Summary.Wins))
	for deckName, n := range report.Summary.Wins {
		wins[deckName] = n
	}
	outcomes := make([]any, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		messages := make([]any, len(o.Messages))
		for i, m := range o.Messages {
			messages[i] = m
		}
		outcomes = append(outcomes, map[string]any{
			"game":        o.Game,
			"seed":        strconv.FormatInt(o.Seed, 10),
			"first_deck":  o.FirstDeck,
			"second_deck": o.SecondDeck,
			"winner":      o.Winner,
			"winner_deck": o.WinnerDeck,
			"turns":       o.Turns,
			"has_error":   o.HasError,
			"messages":    messages,
			"checksum":    o.Checksum,
		})
	}
	return structpb.NewStruct(map[string]any{
		"run_id": report.RunID,
		"seed":   strconv.FormatInt(report.Seed, 10),
		"summary": map[string]any{
			"games":         report.Summary.Games,
			"errors":        report.Summary.Errors,
			"draws":         report.Summary.Draws,
			"wins":          wins,
			"average_turns": report.Summary.AverageTurns,
		},
		"outcomes": outcomes,
	})
}
