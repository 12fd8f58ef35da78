package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/trait-interview/internal/interview"
	"github.com/danielpatrickdp/trait-interview/internal/trait"
)

// #region methods
const (
	nextStepMethod = "/interview.v1.Oracle/NextStep"
	analyzeMethod  = "/interview.v1.Oracle/Analyze"
)

// ErrMalformed marks an oracle reply that decoded but broke the contract.
var ErrMalformed = errors.New("malformed oracle reply")

// #endregion methods

// #region config
// ClientConfig holds transport limits for the oracle connection.
type ClientConfig struct {
	CallTimeout   time.Duration // per call; 0 disables
	RatePerSecond float64       // client-side call rate; 0 disables limiting
	Burst         int
	MinChoices    int
	MaxChoices    int
}

// DefaultClientConfig returns the standard limits.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		CallTimeout:   60 * time.Second,
		RatePerSecond: 2,
		Burst:         4,
		MinChoices:    3,
		MaxChoices:    5,
	}
}

// #endregion config

// #region client-struct
// Client calls the external oracle over gRPC. Messages travel as
// google.protobuf.Struct values holding the JSON contract.
type Client struct {
	conn    *grpc.ClientConn
	cc      grpc.ClientConnInterface
	config  ClientConfig
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// #endregion client-struct

// #region constructor
// NewClient connects to the oracle at addr.
func NewClient(addr string, config ClientConfig, log logrus.FieldLogger) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	c := NewClientWithConn(conn, config, log)
	c.conn = conn
	return c, nil
}

// NewClientWithConn creates a Client over an existing connection.
// Used for testing without a real gRPC server.
func NewClientWithConn(cc grpc.ClientConnInterface, config ClientConfig, log logrus.FieldLogger) *Client {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	c := &Client{
		cc:     cc,
		config: config,
		log:    log.WithField("component", "oracle"),
	}
	if config.RatePerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), burst)
	}
	return c
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region next-step
// NextStep asks for the next question on req.Target.
func (c *Client) NextStep(ctx context.Context, req interview.StepRequest) (interview.Step, error) {
	var step interview.Step
	if err := c.call(ctx, nextStepMethod, req, &step); err != nil {
		return interview.Step{}, fmt.Errorf("next step rpc: %w", err)
	}
	if err := c.validateStep(step); err != nil {
		return interview.Step{}, err
	}
	return step, nil
}

func (c *Client) validateStep(step interview.Step) error {
	if strings.TrimSpace(step.Question) == "" {
		return fmt.Errorf("%w: empty question", ErrMalformed)
	}
	if n := len(step.Choices); n < c.config.MinChoices || (c.config.MaxChoices > 0 && n > c.config.MaxChoices) {
		return fmt.Errorf("%w: %d choices, want %d-%d", ErrMalformed, n, c.config.MinChoices, c.config.MaxChoices)
	}
	seen := make(map[string]bool, len(step.Choices))
	for _, choice := range step.Choices {
		if strings.TrimSpace(choice) == "" {
			return fmt.Errorf("%w: empty choice", ErrMalformed)
		}
		if seen[choice] {
			return fmt.Errorf("%w: duplicate choice %q", ErrMalformed, choice)
		}
		seen[choice] = true
	}
	if _, err := trait.Canonicalize(step.Scores); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for _, s := range step.Scores {
		if s.Score < 1 || s.Score > 100 {
			return fmt.Errorf("%w: %s score %d out of range", ErrMalformed, s.Trait, s.Score)
		}
	}
	return nil
}

// #endregion next-step

// #region analyze
// Analyze requests the final analysis of a finished interview.
func (c *Client) Analyze(ctx context.Context, req interview.AnalysisRequest) (interview.Analysis, error) {
	var analysis interview.Analysis
	if err := c.call(ctx, analyzeMethod, req, &analysis); err != nil {
		return interview.Analysis{}, fmt.Errorf("analyze rpc: %w", err)
	}
	return analysis, nil
}

// #endregion analyze

// #region call
func (c *Client) call(ctx context.Context, method string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	if c.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.CallTimeout)
		defer cancel()
	}

	req, err := toStruct(in)
	if err != nil {
		return err
	}
	resp := &structpb.Struct{}

	start := time.Now()
	err = c.cc.Invoke(ctx, method, req, resp)
	entry := c.log.WithFields(logrus.Fields{"method": method, "elapsed": time.Since(start)})
	if err != nil {
		entry.WithError(err).Warn("oracle call failed")
		return err
	}
	entry.Debug("oracle call")

	if err := fromStruct(resp, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("encode request struct: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode reply struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}

// #endregion call
