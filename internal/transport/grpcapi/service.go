// Package grpcapi exposes the reservation commands as the gRPC service
// tablebook.v1.ReservationService. Requests and responses are
// google.protobuf.Struct messages carrying the command payloads. There is no
// generated code; the service descriptor is assembled at init and registered
// so server reflection can describe it.
package grpcapi

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/table-reservations/internal/transport/command"
)

const ServiceName = "tablebook.v1.ReservationService"

// FullMethod returns the gRPC method path of a command.
func FullMethod(t command.Type) string {
	return "/" + ServiceName + "/" + string(t)
}

// ReservationServiceServer is the handler type registered with grpc.
type ReservationServiceServer interface {
	Handle(ctx context.Context, t command.Type, req *structpb.Struct) (*structpb.Struct, error)
}

type Server struct {
	dispatcher *command.Dispatcher
	log        *zap.Logger
}

func NewServer(svc command.Reservations, log *zap.Logger) *Server {
	return &Server{dispatcher: command.NewDispatcher(svc), log: log}
}

func (s *Server) Handle(ctx context.Context, t command.Type, req *structpb.Struct) (*structpb.Struct, error) {
	payload, err := protojson.Marshal(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}

	out, err := s.dispatcher.Dispatch(ctx, t, payload)
	if err != nil {
		return nil, ToStatus(err)
	}

	body, err := json.Marshal(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	resp := &structpb.Struct{}
	if err := protojson.Unmarshal(body, resp); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

// ServiceDesc describes the service without generated stubs: one unary
// method per command type.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationServiceServer)(nil),
	Methods:     methods(),
	Streams:     []grpc.StreamDesc{},
	Metadata:    protoFile,
}

func methods() []grpc.MethodDesc {
	out := make([]grpc.MethodDesc, 0, len(command.Types))
	for _, t := range command.Types {
		out = append(out, grpc.MethodDesc{MethodName: string(t), Handler: unaryHandler(t)})
	}
	return out
}

func unaryHandler(t command.Type) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(ReservationServiceServer).Handle(ctx, t, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(t)}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(ReservationServiceServer).Handle(ctx, t, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func Register(s grpc.ServiceRegistrar, srv ReservationServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ToStatus maps a service error to a gRPC status. Refused cancellations carry
// the policy fee terms as a Struct detail.
func ToStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch command.Code(err) {
	case command.CodeNotFound:
		code = codes.NotFound
	case command.CodeInvalidArgument:
		code = codes.InvalidArgument
	case command.CodeNoAvailability:
		code = codes.ResourceExhausted
	case command.CodeFailedPrecondition:
		code = codes.FailedPrecondition
	case command.CodePermissionDenied:
		code = codes.PermissionDenied
	case command.CodeConflict:
		code = codes.Aborted
	case command.CodeDeadlineExceeded:
		code = codes.DeadlineExceeded
	case command.CodeUnknownCommand:
		code = codes.Unimplemented
	default:
		code = codes.Internal
	}

	st := status.New(code, err.Error())
	if details := command.Details(err); details != nil {
		if d, derr := structpb.NewStruct(details); derr == nil {
			if withDetails, werr := st.WithDetails(d); werr == nil {
				st = withDetails
			}
		}
	}
	return st.Err()
}
