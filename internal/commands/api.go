package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/dayplan/dayplan-cli/internal/api"
	"github.com/dayplan/dayplan-cli/internal/output"
)

// NewAPICmd creates the api command for raw endpoint access.
func NewAPICmd() *cobra.Command {
	var data, jqExpr string

	cmd := &cobra.Command{
		Use:   "api <method> <path>",
		Short: "Raw API access",
		Long: `Make a raw request to any Dayplan API endpoint.

Useful for endpoints not covered by dedicated commands. The response
can be filtered with a jq expression:

  dayplan api GET /tasks?date=2024-06-01 --jq '.[].description'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := FromContext(cmd.Context())

			method := strings.ToUpper(args[0])
			path := args[1]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			var body any
			if data != "" {
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return output.ErrUsageHint("invalid JSON data",
						fmt.Sprintf("JSON parse error: %v", err))
				}
			}

			var resp *api.Response
			var err error
			switch method {
			case "GET":
				resp, err = app.Client.Get(cmd.Context(), path)
			case "POST":
				resp, err = app.Client.Post(cmd.Context(), path, body)
			case "PATCH":
				resp, err = app.Client.Patch(cmd.Context(), path, body)
			case "DELETE":
				resp, err = app.Client.Delete(cmd.Context(), path)
			default:
				return output.ErrUsage("unsupported method: " + method)
			}
			if err != nil {
				return err
			}

			var payload any
			if len(resp.Data) > 0 {
				if err := json.Unmarshal(resp.Data, &payload); err != nil {
					return fmt.Errorf("failed to parse response: %w", err)
				}
			}

			if jqExpr != "" {
				payload, err = applyJQ(jqExpr, payload)
				if err != nil {
					return err
				}
			}

			return app.OK(&output.Response{
				Summary: fmt.Sprintf("%s %s: %d", method, path, resp.StatusCode),
				Data:    payload,
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVar(&jqExpr, "jq", "", "jq expression applied to the response")
	return cmd
}

// applyJQ runs a jq expression over the decoded payload. A single
// result is returned bare; multiple results come back as an array.
func applyJQ(expr string, payload any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, output.ErrUsageHint("invalid jq expression", err.Error())
	}

	var results []any
	iter := query.Run(payload)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, output.ErrUsageHint("jq evaluation failed", err.Error())
		}
		results = append(results, v)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}
