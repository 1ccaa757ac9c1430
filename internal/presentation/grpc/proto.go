package grpc

// proto.go declares RiskService by hand in place of generated stubs. Messages
// travel as JSON through the codec in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bib.risk.v1.RiskService"

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	Classify(context.Context, *ClassifyRequest) (*ClassifyResponse, error)
	ScoreCustomer(context.Context, *ScoreCustomerRequest) (*ScoreCustomerResponse, error)
	EditCustomer(context.Context, *EditCustomerRequest) (*EditCustomerResponse, error)
	ListTransitions(context.Context, *ListTransitionsRequest) (*ListTransitionsResponse, error)
	ListFieldEdits(context.Context, *ListFieldEditsRequest) (*ListFieldEditsResponse, error)
	GetArtifact(context.Context, *GetArtifactRequest) (*ArtifactResponse, error)
	ReloadArtifact(context.Context, *ReloadArtifactRequest) (*ArtifactResponse, error)
	Reconcile(context.Context, *ReconcileRequest) (*ReconcileResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible default implementations.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) Classify(context.Context, *ClassifyRequest) (*ClassifyResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Classify not implemented")
}
func (UnimplementedRiskServiceServer) ScoreCustomer(context.Context, *ScoreCustomerRequest) (*ScoreCustomerResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreCustomer not implemented")
}
func (UnimplementedRiskServiceServer) EditCustomer(context.Context, *EditCustomerRequest) (*EditCustomerResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EditCustomer not implemented")
}
func (UnimplementedRiskServiceServer) ListTransitions(context.Context, *ListTransitionsRequest) (*ListTransitionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListTransitions not implemented")
}
func (UnimplementedRiskServiceServer) ListFieldEdits(context.Context, *ListFieldEditsRequest) (*ListFieldEditsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListFieldEdits not implemented")
}
func (UnimplementedRiskServiceServer) GetArtifact(context.Context, *GetArtifactRequest) (*ArtifactResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetArtifact not implemented")
}
func (UnimplementedRiskServiceServer) ReloadArtifact(context.Context, *ReloadArtifactRequest) (*ArtifactResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReloadArtifact not implemented")
}
func (UnimplementedRiskServiceServer) Reconcile(context.Context, *ReconcileRequest) (*ReconcileResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Reconcile not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers srv with the gRPC server.
func RegisterRiskServiceServer(s grpclib.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&riskServiceDesc, srv)
}

var riskServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Classify",        Handler: _RiskService_Classify_Handler},
		{MethodName: "ScoreCustomer",   Handler: _RiskService_ScoreCustomer_Handler},
		{MethodName: "EditCustomer",    Handler: _RiskService_EditCustomer_Handler},
		{MethodName: "ListTransitions", Handler: _RiskService_ListTransitions_Handler},
		{MethodName: "ListFieldEdits",  Handler: _RiskService_ListFieldEdits_Handler},
		{MethodName: "GetArtifact",     Handler: _RiskService_GetArtifact_Handler},
		{MethodName: "ReloadArtifact",  Handler: _RiskService_ReloadArtifact_Handler},
		{MethodName: "Reconcile",       Handler: _RiskService_Reconcile_Handler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "bib/risk/v1/risk.proto",
}

func _RiskService_Classify_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ClassifyRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).Classify(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Classify"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).Classify(ctx, req.(*ClassifyRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_ScoreCustomer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ScoreCustomerRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ScoreCustomer(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ScoreCustomer"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).ScoreCustomer(ctx, req.(*ScoreCustomerRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_EditCustomer_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(EditCustomerRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).EditCustomer(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/EditCustomer"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).EditCustomer(ctx, req.(*EditCustomerRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_ListTransitions_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ListTransitionsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ListTransitions(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListTransitions"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).ListTransitions(ctx, req.(*ListTransitionsRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_ListFieldEdits_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ListFieldEditsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ListFieldEdits(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListFieldEdits"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).ListFieldEdits(ctx, req.(*ListFieldEditsRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_GetArtifact_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetArtifactRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).GetArtifact(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetArtifact"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).GetArtifact(ctx, req.(*GetArtifactRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_ReloadArtifact_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ReloadArtifactRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).ReloadArtifact(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ReloadArtifact"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).ReloadArtifact(ctx, req.(*ReloadArtifactRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _RiskService_Reconcile_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ReconcileRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).Reconcile(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Reconcile"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RiskServiceServer).Reconcile(ctx, req.(*ReconcileRequest))
	}
	return interceptor(ctx, req, info, handler)
}
