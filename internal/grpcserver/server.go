// Package grpcserver exposes chart computation over gRPC. Calls are
// stateless: each one computes the chart from the given birth input.
package grpcserver

import (
	"bytes"
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ziwei/internal/chart"
	"ziwei/internal/export"
	"ziwei/internal/kb"
	"ziwei/internal/palace"
	"ziwei/internal/render"
	"ziwei/internal/session"
	"ziwei/pkg/logger"
)

const callSession = "grpc"

var errAmbiguousHour = status.Error(codes.InvalidArgument, "子時需指定早子（early）或晚子（late）")

type Server struct {
	Provider chart.Provider
	KB       *kb.Store
	Options  session.Options
}

func NewServer(p chart.Provider, store *kb.Store, opts session.Options) *Server {
	return &Server{Provider: p, KB: store, Options: opts}
}

var _ ChartServiceServer = (*Server)(nil)

// calculate runs the same validation and normalisation as the web form on a
// throwaway session.
func (s *Server) calculate(ctx context.Context, req *ComputeRequest) (session.State, error) {
	if req == nil {
		return session.State{}, status.Error(codes.InvalidArgument, "request required")
	}
	ctl := session.NewController(s.Provider, session.NewStore(), s.Options)
	st, err := ctl.Calculate(ctx, callSession, "", req.Input)
	if err != nil {
		return st, toStatus(err)
	}
	return st, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, session.ErrMissingBirthDate), errors.Is(err, session.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, session.Message(err))
	case errors.Is(err, session.ErrCalculationFailed):
		return status.Error(codes.FailedPrecondition, session.Message(err))
	default:
		return status.Error(codes.Internal, session.Message(err))
	}
}

func (s *Server) Compute(ctx context.Context, req *ComputeRequest) (*ComputeResponse, error) {
	st, err := s.calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &ComputeResponse{Input: st.Input}
	if st.Stage == session.StageChoose {
		for _, cand := range st.Candidates {
			resp.Candidates = append(resp.Candidates, CandidateSummary{
				Slot:   cand.Slot,
				Label:  cand.Label,
				Soul:   cand.Chart.Soul,
				Bureau: cand.Chart.FiveElementsClass,
			})
		}
		return resp, nil
	}

	base := s.KB.Current()
	g := render.BuildGrid(st.Chart, st.Annotations)
	aph := render.Aphorism(st.Chart, base)
	resp.Chart = st.Chart
	resp.Annotations = st.Annotations
	resp.Aphorism = &aph
	if line, ok := render.ClashLine(g, g.Pressure); ok {
		resp.Clash = &line
	}
	return resp, nil
}

func (s *Server) Palace(ctx context.Context, req *PalaceRequest) (*render.Panel, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	if !palace.ValidIndex(req.Index) {
		return nil, status.Errorf(codes.InvalidArgument, "index must be 0-%d", palace.Count-1)
	}
	st, err := s.calculate(ctx, &ComputeRequest{Input: req.Input})
	if err != nil {
		return nil, err
	}
	if !st.HasChart() {
		return nil, errAmbiguousHour
	}
	p, err := render.Detail(st.Chart, st.Annotations, s.KB.Current(), req.Index)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &p, nil
}

func (s *Server) Export(ctx context.Context, req *ComputeRequest) (*ExportResponse, error) {
	st, err := s.calculate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !st.HasChart() {
		return nil, errAmbiguousHour
	}
	doc, err := export.Build(export.Source{
		Input:       st.Input,
		Chart:       st.Chart,
		Annotations: st.Annotations,
		KB:          s.KB.Current(),
	})
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, session.Message(err))
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, doc); err != nil {
		return nil, status.Error(codes.Internal, "write csv failed")
	}
	return &ExportResponse{Filename: export.Filename, CSV: buf.String()}, nil
}

// UnaryLogger logs every call with its status code and duration.
func UnaryLogger() grpc.UnaryServerInterceptor {
	log := logger.Named("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if code == codes.OK || code == codes.InvalidArgument {
			log.Infow("call", "method", info.FullMethod, "code", code.String(), "took", time.Since(start))
		} else {
			log.Warnw("call failed", "method", info.FullMethod, "code", code.String(), "took", time.Since(start), "err", err)
		}
		return resp, err
	}
}
