package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/labstack/gommon/log"
)

// HeaderConnectionID carries the API Gateway connection id on the
// integration requests for $connect, $disconnect and $default.
const HeaderConnectionID = "X-Connection-Id"

// ErrConnectionGone means the dashboard closed its socket without the
// gateway sending $disconnect. Callers should forget the connection.
var ErrConnectionGone = errors.New("websocket connection is gone")

type GatewayClient interface {
	PostToConnection(ctx context.Context, connID string, data any) error
	DeleteConnection(ctx context.Context, connID string) error
}

type AWSGatewayClient struct {
	api *apigatewaymanagementapi.Client
}

// NewAWSGatewayClient targets the management endpoint of a deployed stage,
// e.g. https://{api-id}.execute-api.{region}.amazonaws.com/{stage}.
func NewAWSGatewayClient(ctx context.Context, endpoint, region string) (*AWSGatewayClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading gateway config: %w", err)
	}

	api := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	log.Infof("change notifications go through %s", endpoint)
	return &AWSGatewayClient{api: api}, nil
}

func (g *AWSGatewayClient) PostToConnection(ctx context.Context, connID string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding socket message: %w", err)
	}

	_, err = g.api.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connID),
		Data:         payload,
	})
	return classify(connID, err)
}

func (g *AWSGatewayClient) DeleteConnection(ctx context.Context, connID string) error {
	_, err := g.api.DeleteConnection(ctx, &apigatewaymanagementapi.DeleteConnectionInput{
		ConnectionId: aws.String(connID),
	})
	if err = classify(connID, err); errors.Is(err, ErrConnectionGone) {
		return nil
	}
	return err
}

func classify(connID string, err error) error {
	if err == nil {
		return nil
	}

	var gone *types.GoneException
	if errors.As(err, &gone) {
		return ErrConnectionGone
	}
	log.Warnf("gateway call for connection %s failed: %v", connID, err)
	return err
}

// NoopGatewayClient is used when no gateway endpoint is configured, so
// change notifications silently go nowhere.
type NoopGatewayClient struct{}

func (NoopGatewayClient) PostToConnection(context.Context, string, any) error {
	return nil
}

func (NoopGatewayClient) DeleteConnection(context.Context, string) error {
	return nil
}
