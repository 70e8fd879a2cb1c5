package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "rpgtracker.encounter.v1alpha1.EncounterService"

// EncounterServiceServer is the server API for the encounter service
type EncounterServiceServer interface {
	CreateEncounter(context.Context, *CreateEncounterRequest) (*CreateEncounterResponse, error)
	GetEncounter(context.Context, *GetEncounterRequest) (*GetEncounterResponse, error)
	ListEncounters(context.Context, *ListEncountersRequest) (*ListEncountersResponse, error)
	UpdateEncounter(context.Context, *UpdateEncounterRequest) (*UpdateEncounterResponse, error)
	DeleteEncounter(context.Context, *DeleteEncounterRequest) (*DeleteEncounterResponse, error)
	AddParticipant(context.Context, *AddParticipantRequest) (*AddParticipantResponse, error)
	UpdateParticipant(context.Context, *UpdateParticipantRequest) (*UpdateParticipantResponse, error)
	RemoveParticipant(context.Context, *RemoveParticipantRequest) (*RemoveParticipantResponse, error)
	UpdateParticipantHP(context.Context, *UpdateParticipantHPRequest) (*UpdateParticipantHPResponse, error)
	AddLairAction(context.Context, *AddLairActionRequest) (*AddLairActionResponse, error)
	StartCombat(context.Context, *StartCombatRequest) (*StartCombatResponse, error)
	EndCombat(context.Context, *EndCombatRequest) (*EndCombatResponse, error)
	NextTurn(context.Context, *NextTurnRequest) (*NextTurnResponse, error)
	GetInitiativeOrder(context.Context, *GetInitiativeOrderRequest) (*GetInitiativeOrderResponse, error)
}

// EncounterServiceDesc describes the encounter service for grpc.Server
var EncounterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EncounterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateEncounter", EncounterServiceServer.CreateEncounter),
		unary("GetEncounter", EncounterServiceServer.GetEncounter),
		unary("ListEncounters", EncounterServiceServer.ListEncounters),
		unary("UpdateEncounter", EncounterServiceServer.UpdateEncounter),
		unary("DeleteEncounter", EncounterServiceServer.DeleteEncounter),
		unary("AddParticipant", EncounterServiceServer.AddParticipant),
		unary("UpdateParticipant", EncounterServiceServer.UpdateParticipant),
		unary("RemoveParticipant", EncounterServiceServer.RemoveParticipant),
		unary("UpdateParticipantHP", EncounterServiceServer.UpdateParticipantHP),
		unary("AddLairAction", EncounterServiceServer.AddLairAction),
		unary("StartCombat", EncounterServiceServer.StartCombat),
		unary("EndCombat", EncounterServiceServer.EndCombat),
		unary("NextTurn", EncounterServiceServer.NextTurn),
		unary("GetInitiativeOrder", EncounterServiceServer.GetInitiativeOrder),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rpgtracker/encounter/v1alpha1/encounter.json",
}

// RegisterEncounterServiceServer registers srv on s
func RegisterEncounterServiceServer(s grpc.ServiceRegistrar, srv EncounterServiceServer) {
	s.RegisterService(&EncounterServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary builds the method descriptor for one request/response call
func unary[Req, Resp any](
	method string,
	call func(EncounterServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EncounterServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EncounterServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// EncounterServiceClient is the client API for the encounter service
type EncounterServiceClient interface {
	CreateEncounter(ctx context.Context, in *CreateEncounterRequest, opts ...grpc.CallOption) (*CreateEncounterResponse, error)
	GetEncounter(ctx context.Context, in *GetEncounterRequest, opts ...grpc.CallOption) (*GetEncounterResponse, error)
	ListEncounters(ctx context.Context, in *ListEncountersRequest, opts ...grpc.CallOption) (*ListEncountersResponse, error)
	UpdateEncounter(ctx context.Context, in *UpdateEncounterRequest, opts ...grpc.CallOption) (*UpdateEncounterResponse, error)
	DeleteEncounter(ctx context.Context, in *DeleteEncounterRequest, opts ...grpc.CallOption) (*DeleteEncounterResponse, error)
	AddParticipant(ctx context.Context, in *AddParticipantRequest, opts ...grpc.CallOption) (*AddParticipantResponse, error)
	UpdateParticipant(ctx context.Context, in *UpdateParticipantRequest, opts ...grpc.CallOption) (*UpdateParticipantResponse, error)
	RemoveParticipant(ctx context.Context, in *RemoveParticipantRequest, opts ...grpc.CallOption) (*RemoveParticipantResponse, error)
	UpdateParticipantHP(ctx context.Context, in *UpdateParticipantHPRequest, opts ...grpc.CallOption) (*UpdateParticipantHPResponse, error)
	AddLairAction(ctx context.Context, in *AddLairActionRequest, opts ...grpc.CallOption) (*AddLairActionResponse, error)
	StartCombat(ctx context.Context, in *StartCombatRequest, opts ...grpc.CallOption) (*StartCombatResponse, error)
	EndCombat(ctx context.Context, in *EndCombatRequest, opts ...grpc.CallOption) (*EndCombatResponse, error)
	NextTurn(ctx context.Context, in *NextTurnRequest, opts ...grpc.CallOption) (*NextTurnResponse, error)
	GetInitiativeOrder(ctx context.Context, in *GetInitiativeOrderRequest, opts ...grpc.CallOption) (*GetInitiativeOrderResponse, error)
}

type encounterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewEncounterServiceClient returns a client that always speaks the JSON codec
func NewEncounterServiceClient(cc grpc.ClientConnInterface) EncounterServiceClient {
	return &encounterServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *encounterServiceClient) CreateEncounter(ctx context.Context, in *CreateEncounterRequest, opts ...grpc.CallOption) (*CreateEncounterResponse, error) {
	return invoke[CreateEncounterResponse](ctx, c.cc, "CreateEncounter", in, opts)
}

func (c *encounterServiceClient) GetEncounter(ctx context.Context, in *GetEncounterRequest, opts ...grpc.CallOption) (*GetEncounterResponse, error) {
	return invoke[GetEncounterResponse](ctx, c.cc, "GetEncounter", in, opts)
}

func (c *encounterServiceClient) ListEncounters(ctx context.Context, in *ListEncountersRequest, opts ...grpc.CallOption) (*ListEncountersResponse, error) {
	return invoke[ListEncountersResponse](ctx, c.cc, "ListEncounters", in, opts)
}

func (c *encounterServiceClient) UpdateEncounter(ctx context.Context, in *UpdateEncounterRequest, opts ...grpc.CallOption) (*UpdateEncounterResponse, error) {
	return invoke[UpdateEncounterResponse](ctx, c.cc, "UpdateEncounter", in, opts)
}

func (c *encounterServiceClient) DeleteEncounter(ctx context.Context, in *DeleteEncounterRequest, opts ...grpc.CallOption) (*DeleteEncounterResponse, error) {
	return invoke[DeleteEncounterResponse](ctx, c.cc, "DeleteEncounter", in, opts)
}

func (c *encounterServiceClient) AddParticipant(ctx context.Context, in *AddParticipantRequest, opts ...grpc.CallOption) (*AddParticipantResponse, error) {
	return invoke[AddParticipantResponse](ctx, c.cc, "AddParticipant", in, opts)
}

func (c *encounterServiceClient) UpdateParticipant(ctx context.Context, in *UpdateParticipantRequest, opts ...grpc.CallOption) (*UpdateParticipantResponse, error) {
	return invoke[UpdateParticipantResponse](ctx, c.cc, "UpdateParticipant", in, opts)
}

func (c *encounterServiceClient) RemoveParticipant(ctx context.Context, in *RemoveParticipantRequest, opts ...grpc.CallOption) (*RemoveParticipantResponse, error) {
	return invoke[RemoveParticipantResponse](ctx, c.cc, "RemoveParticipant", in, opts)
}

func (c *encounterServiceClient) UpdateParticipantHP(ctx context.Context, in *UpdateParticipantHPRequest, opts ...grpc.CallOption) (*UpdateParticipantHPResponse, error) {
	return invoke[UpdateParticipantHPResponse](ctx, c.cc, "UpdateParticipantHP", in, opts)
}

func (c *encounterServiceClient) AddLairAction(ctx context.Context, in *AddLairActionRequest, opts ...grpc.CallOption) (*AddLairActionResponse, error) {
	return invoke[AddLairActionResponse](ctx, c.cc, "AddLairAction", in, opts)
}

func (c *encounterServiceClient) StartCombat(ctx context.Context, in *StartCombatRequest, opts ...grpc.CallOption) (*StartCombatResponse, error) {
	return invoke[StartCombatResponse](ctx, c.cc, "StartCombat", in, opts)
}

func (c *encounterServiceClient) EndCombat(ctx context.Context, in *EndCombatRequest, opts ...grpc.CallOption) (*EndCombatResponse, error) {
	return invoke[EndCombatResponse](ctx, c.cc, "EndCombat", in, opts)
}

func (c *encounterServiceClient) NextTurn(ctx context.Context, in *NextTurnRequest, opts ...grpc.CallOption) (*NextTurnResponse, error) {
	return invoke[NextTurnResponse](ctx, c.cc, "NextTurn", in, opts)
}

func (c *encounterServiceClient) GetInitiativeOrder(ctx context.Context, in *GetInitiativeOrderRequest, opts ...grpc.CallOption) (*GetInitiativeOrderResponse, error) {
	return invoke[GetInitiativeOrderResponse](ctx, c.cc, "GetInitiativeOrder", in, opts)
}
