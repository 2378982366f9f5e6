package grpccanon

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/model"
	"xdao.co/roasort/storage"
)

// Server serves the Canonicalizer service over a local pipeline.
type Server struct {
	UnimplementedCanonicalizerServer

	// Archive, when non-nil, persists the source bytes and the canonical
	// listing of every successful canonicalization. An archive failure
	// fails the RPC; the daemon never reports a result it could not keep.
	Archive storage.Archive
}

func (s *Server) CanonicalizeText(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return s.canonicalize(model.KindText, req.GetValue())
}

func (s *Server) CanonicalizeROA(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return s.canonicalize(model.KindROA, req.GetValue())
}

func (s *Server) canonicalize(kind model.InputKind, data []byte) (*structpb.Struct, error) {
	res, err := canon.Run(kind, data)
	if err != nil {
		return nil, mapCanonErr(err)
	}
	if s.Archive != nil {
		if _, err := s.Archive.Put(data); err != nil {
			return nil, status.Errorf(codes.Internal, "archive source: %v", err)
		}
		if _, err := storage.PutListing(s.Archive, res.Lines); err != nil {
			return nil, status.Errorf(codes.Internal, "archive listing: %v", err)
		}
	}
	return resultStruct(res)
}

// mapCanonErr translates pipeline failures into gRPC statuses. Every
// input-caused failure is an InvalidArgument carrying the classified code
// and the pipeline's own message; anything else is Internal.
func mapCanonErr(err error) error {
	ce := model.Classify(err)
	if ce.InputError() {
		return status.Error(codes.InvalidArgument, ce.Error())
	}
	return status.Errorf(codes.Internal, "canonicalize: %v", err)
}

func resultStruct(res model.Result) (*structpb.Struct, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return st, nil
}

func resultFromStruct(st *structpb.Struct) (model.Result, error) {
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return model.Result{}, fmt.Errorf("grpccanon: decode result: %v", err)
	}
	var res model.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return model.Result{}, fmt.Errorf("grpccanon: decode result: %v", err)
	}
	return res, nil
}
