package grpcapi

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/table-reservations/internal/transport/command"
)

const protoFile = "tablebook/v1/reservation.proto"

// FileDescriptor describes the service for reflection clients such as grpcurl.
// It is built from command.Types, so it always matches ServiceDesc.
var FileDescriptor protoreflect.FileDescriptor

func init() {
	fd, err := buildFileDescriptor()
	if err != nil {
		panic(fmt.Sprintf("grpcapi: build %s: %v", protoFile, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("grpcapi: register %s: %v", protoFile, err))
	}
	FileDescriptor = fd
}

func buildFileDescriptor() (protoreflect.FileDescriptor, error) {
	structFile := structpb.File_google_protobuf_struct_proto.Path()
	structName := "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())

	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String("ReservationService")}
	for _, t := range command.Types {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(string(t)),
			InputType:  proto.String(structName),
			OutputType: proto.String(structName),
		})
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoFile),
		Package:    proto.String("tablebook.v1"),
		Dependency: []string{structFile},
		Service:    []*descriptorpb.ServiceDescriptorProto{svc},
		Syntax:     proto.String("proto3"),
	}
	return protodesc.NewFile(fdp, protoregistry.GlobalFiles)
}
