package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"ziwei/internal/render"
	"ziwei/pkg/models"
)

const serviceName = "ziwei.v1.ChartService"

type ComputeRequest struct {
	Input models.BirthInput `json:"input"`
}

// CandidateSummary describes one side of an ambiguous 子 hour.
type CandidateSummary struct {
	Slot   int    `json:"slot"`
	Label  string `json:"label"`
	Soul   string `json:"soul"`
	Bureau string `json:"bureau"`
}

// ComputeResponse carries either a chart or, for a 子 hour without
// early/late, the two candidates to choose from.
type ComputeResponse struct {
	Input       models.BirthInput    `json:"input"`
	Chart       *models.Chart        `json:"chart,omitempty"`
	Annotations []models.Annotation  `json:"annotations,omitempty"`
	Clash       *render.Line         `json:"clash,omitempty"`
	Aphorism    *render.AphorismView `json:"aphorism,omitempty"`
	Candidates  []CandidateSummary   `json:"candidates,omitempty"`
}

type PalaceRequest struct {
	Input models.BirthInput `json:"input"`
	Index int               `json:"index"`
}

type ExportResponse struct {
	Filename string `json:"filename"`
	CSV      string `json:"csv"`
}

// ChartServiceServer is implemented by Server.
type ChartServiceServer interface {
	Compute(context.Context, *ComputeRequest) (*ComputeResponse, error)
	Palace(context.Context, *PalaceRequest) (*render.Panel, error)
	Export(context.Context, *ComputeRequest) (*ExportResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ChartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compute", Handler: computeHandler},
		{MethodName: "Palace", Handler: palaceHandler},
		{MethodName: "Export", Handler: exportHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ziwei/v1/chart.proto",
}

func RegisterChartServiceServer(s grpc.ServiceRegistrar, srv ChartServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + serviceName + "/" + name }

func computeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ComputeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).Compute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Compute")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).Compute(ctx, req.(*ComputeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func palaceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PalaceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).Palace(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Palace")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).Palace(ctx, req.(*PalaceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func exportHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ComputeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).Export(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Export")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).Export(ctx, req.(*ComputeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls ChartService with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *Client) Compute(ctx context.Context, in *ComputeRequest, opts ...grpc.CallOption) (*ComputeResponse, error) {
	out := new(ComputeResponse)
	if err := c.invoke(ctx, "Compute", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Palace(ctx context.Context, in *PalaceRequest, opts ...grpc.CallOption) (*render.Panel, error) {
	out := new(render.Panel)
	if err := c.invoke(ctx, "Palace", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Export(ctx context.Context, in *ComputeRequest, opts ...grpc.CallOption) (*ExportResponse, error) {
	out := new(ExportResponse)
	if err := c.invoke(ctx, "Export", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
