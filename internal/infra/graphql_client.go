package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"sealed-mail/internal/gql"
)

const maxErrorBody = 4 << 10

// GraphQLClient はバックエンドのGraphQLエンドポイントをHTTPで呼び出す。
type GraphQLClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewGraphQLClient は新しいGraphQLClientを生成する。
// httpClient が nil の場合はotelhttpで計装したクライアントを使用する。
func NewGraphQLClient(endpoint, token string, httpClient *http.Client) *GraphQLClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   60 * time.Second,
		}
	}
	return &GraphQLClient{endpoint: endpoint, token: token, httpClient: httpClient}
}

// Query はクエリを実行し、data を out にデコードする。
func (c *GraphQLClient) Query(ctx context.Context, document string, variables map[string]any, out any) error {
	return c.do(ctx, document, variables, out)
}

// Mutate はミューテーションを実行し、data を out にデコードする。
func (c *GraphQLClient) Mutate(ctx context.Context, document string, variables map[string]any, out any) error {
	return c.do(ctx, document, variables, out)
}

func (c *GraphQLClient) do(ctx context.Context, document string, variables map[string]any, out any) error {
	body, err := json.Marshal(gql.Request{Query: document, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", gql.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", gql.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &gql.HTTPError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var gqlResp gql.Response
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return fmt.Errorf("%w: decoding response: %w", gql.ErrTransport, err)
	}
	if len(gqlResp.Errors) > 0 {
		return gqlResp.Errors
	}
	if out == nil || len(gqlResp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("decoding graphql data: %w", err)
	}
	return nil
}
