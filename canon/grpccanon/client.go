package grpccanon

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/roasort/model"
)

// Client calls a remote Canonicalizer and yields model.Result values, so
// remote and in-process canonicalization are interchangeable to callers.
type Client struct {
	cc     *grpc.ClientConn
	client CanonicalizerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewCanonicalizerClient(cc), Timeout: 0}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Canonicalize dispatches on the input kind.
func (c *Client) Canonicalize(kind model.InputKind, data []byte) (model.Result, error) {
	switch kind {
	case model.KindText:
		return c.CanonicalizeText(data)
	case model.KindROA:
		return c.CanonicalizeROA(data)
	}
	return model.Result{}, fmt.Errorf("grpccanon: unknown input kind %q", kind)
}

func (c *Client) CanonicalizeText(data []byte) (model.Result, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	st, err := c.client.CanonicalizeText(ctx, wrapperspb.Bytes(data))
	return decodeReply(st, err)
}

func (c *Client) CanonicalizeROA(data []byte) (model.Result, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	st, err := c.client.CanonicalizeROA(ctx, wrapperspb.Bytes(data))
	return decodeReply(st, err)
}

func decodeReply(st *structpb.Struct, err error) (model.Result, error) {
	if err != nil {
		if s, ok := status.FromError(err); ok {
			return model.Result{}, fmt.Errorf("%s", s.Message())
		}
		return model.Result{}, err
	}
	return resultFromStruct(st)
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
