//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type optimizeRequest struct {
	Recipes    json.RawMessage `json:"recipes"`
	Entities   json.RawMessage `json:"entities"`
	Objective  string          `json:"objective"`
	Iterations int             `json:"iterations"`
	Deviations *int            `json:"deviations"`
	Seed       uint64          `json:"seed"`
	Demand     []Target        `json:"demand"`
}

type optimizeResult struct {
	Run        string    `json:"run"`
	Iterations int64     `json:"iterations"`
	TimeMs     int64     `json:"timeMs"`
	Cancelled  bool      `json:"cancelled"`
	Report     Report    `json:"report"`
	Publishes  []Publish `json:"publishes"`
}

// maxLambdaIterations keeps one invocation well inside the function timeout;
// the invocation deadline still cancels the search if it runs long.
const maxLambdaIterations = 200_000

const responseMargin = 2 * time.Second

var logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req optimizeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if len(req.Recipes) == 0 {
		return errResp(400, "missing recipes field")
	}

	cfg := DefaultConfig()
	cfg.Search.Iterations = maxLambdaIterations
	if req.Objective != "" {
		cfg.Objective = req.Objective
	}
	if req.Iterations > 0 && req.Iterations < maxLambdaIterations {
		cfg.Search.Iterations = req.Iterations
	}
	if req.Deviations != nil {
		cfg.Search.Deviations = *req.Deviations
	}
	cfg.Search.Seed = req.Seed
	if len(req.Demand) > 0 {
		cfg.Demand = req.Demand
	}
	if err := cfg.Validate(); err != nil {
		return errResp(400, err.Error())
	}

	net, err := loadNetworkFromStrings(string(req.Recipes), string(req.Entities), cfg.BeaconSlots)
	if err != nil {
		return errResp(400, err.Error())
	}
	p, err := NewProblem(net, cfg)
	if err != nil {
		return errResp(400, err.Error())
	}

	// stop early enough to still marshal and return the best so far
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-responseMargin))
		defer cancel()
	}
	out, err := runOptimization(ctx, p, cfg, logger, nil)
	if err != nil {
		return errResp(500, err.Error())
	}

	resp := optimizeResult{
		Run:        out.Run.ID,
		Iterations: out.Result.Iterations,
		TimeMs:     out.Result.Elapsed.Milliseconds(),
		Cancelled:  out.Result.Cancelled,
		Report:     BuildReport(out.Result.Best),
		Publishes:  out.Result.Publishes,
	}
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
