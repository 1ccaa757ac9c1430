package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

// ClientOptions configures a RiskService client connection.
type ClientOptions struct {
	CAFile     string
	ServerName string
	TLS        bool
}

// Client calls RiskService over the JSON codec.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a RiskService at addr.
func Dial(addr string, opts ClientOptions) (*Client, error) {
	creds := insecure.NewCredentials()
	if opts.TLS {
		tlsCreds, err := tlsutil.ClientCredentials(opts.CAFile, opts.ServerName)
		if err != nil {
			return nil, fmt.Errorf("failed to load client TLS credentials: %w", err)
		}
		creds = tlsCreds
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial risk service at %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection. Calls still select the JSON codec.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, grpc.CallContentSubtype(CodecName))
}

func (c *Client) Classify(ctx context.Context, req *ClassifyRequest) (*ClassifyResponse, error) {
	resp := new(ClassifyResponse)
	if err := c.invoke(ctx, "Classify", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ScoreCustomer(ctx context.Context, req *ScoreCustomerRequest) (*ScoreCustomerResponse, error) {
	resp := new(ScoreCustomerResponse)
	if err := c.invoke(ctx, "ScoreCustomer", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) EditCustomer(ctx context.Context, req *EditCustomerRequest) (*EditCustomerResponse, error) {
	resp := new(EditCustomerResponse)
	if err := c.invoke(ctx, "EditCustomer", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListTransitions(ctx context.Context, req *ListTransitionsRequest) (*ListTransitionsResponse, error) {
	resp := new(ListTransitionsResponse)
	if err := c.invoke(ctx, "ListTransitions", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListFieldEdits(ctx context.Context, req *ListFieldEditsRequest) (*ListFieldEditsResponse, error) {
	resp := new(ListFieldEditsResponse)
	if err := c.invoke(ctx, "ListFieldEdits", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetArtifact(ctx context.Context) (*ArtifactResponse, error) {
	resp := new(ArtifactResponse)
	if err := c.invoke(ctx, "GetArtifact", &GetArtifactRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ReloadArtifact(ctx context.Context) (*ArtifactResponse, error) {
	resp := new(ArtifactResponse)
	if err := c.invoke(ctx, "ReloadArtifact", &ReloadArtifactRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Reconcile(ctx context.Context, req *ReconcileRequest) (*ReconcileResponse, error) {
	resp := new(ReconcileResponse)
	if err := c.invoke(ctx, "Reconcile", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
