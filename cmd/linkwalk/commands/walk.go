package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/fivetwenty-io/linkwalk/pkg/walkclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// WalkRequest is one walk as requested on the command line.
type WalkRequest struct {
	Method    string
	Relations []string
	Params    WalkParams
	Body      interface{}
}

type walkCommandDef struct {
	method   string
	short    string
	withBody bool
}

var walkCommandDefs = []walkCommandDef{
	{method: http.MethodGet, short: "Walk the relations and GET the final resource"},
	{method: http.MethodDelete, short: "Walk the relations and DELETE the final resource"},
	{method: http.MethodPost, short: "Walk the relations and POST data to the final URI", withBody: true},
	{method: http.MethodPut, short: "Walk the relations and PUT data to the final URI", withBody: true},
	{method: http.MethodPatch, short: "Walk the relations and PATCH the final resource", withBody: true},
}

// NewWalkCommands creates the get, delete, post, put and patch commands.
func NewWalkCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(walkCommandDefs))
	for _, def := range walkCommandDefs {
		cmds = append(cmds, newWalkCommand(def))
	}

	return cmds
}

func newWalkCommand(def walkCommandDef) *cobra.Command {
	var (
		params []string
		data   string
	)

	name := strings.ToLower(def.method)

	cmd := &cobra.Command{
		Use:   name + " [REL...]",
		Short: def.short,
		Long: def.short + `.

Each REL names a link relation followed from the current resource, starting
at the configured root. With no relations the root itself is the target.
Template parameters are given with --param key=value (every step) or
--param rel:key=value (only the step named rel).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			walkParams, err := parseParams(params)
			if err != nil {
				return err
			}

			req := WalkRequest{Method: def.method, Relations: args, Params: walkParams}

			if def.withBody {
				if data == "" {
					return fmt.Errorf("%w for %s", constants.ErrDataRequired, name)
				}

				body, err := readData(data, os.Stdin)
				if err != nil {
					return err
				}

				req.Body = body
			}

			config := loadConfig()

			err = validateOutput(config.Output)
			if err != nil {
				return err
			}

			verbose := viper.GetBool("verbose")
			logger := NewLogger(cmd.ErrOrStderr(), verbose)

			walkConfig, err := buildWalkConfig(config, viper.GetStringSlice("header"), verbose, logger)
			if err != nil {
				return err
			}

			return runWalk(cmd.Context(), walkConfig, req, config.Output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "template parameter as key=value or rel:key=value (repeatable)")

	if def.withBody {
		cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body, @file to read a file, or - to read standard input")
	}

	return cmd
}

// runWalk builds a client from config, performs req and renders the result.
func runWalk(ctx context.Context, config *linkwalk.Config, req WalkRequest, format string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := walkclient.New(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	defer func() { _ = client.Close() }()

	if config.Logger != nil {
		client.Metrics().SetOnChange(func(endpoint string, metrics linkwalk.Metrics) {
			config.Logger.Debug("endpoint metrics", map[string]interface{}{
				"endpoint": endpoint,
				"requests": metrics.TotalRequests,
				"errors":   metrics.TotalErrors,
				"latency":  metrics.AverageLatency.String(),
			})
		})
	}

	res, err := startWalk(ctx, client.NewRequest(), req).Wait(ctx)
	if err != nil {
		return describeWalkError(err)
	}

	return renderResult(out, res, format)
}

func startWalk(ctx context.Context, builder *linkwalk.RequestBuilder, req WalkRequest) *linkwalk.Future {
	if len(req.Params.Global) > 0 {
		builder.WithTemplateParams(req.Params.Global)
	}

	for _, rel := range req.Relations {
		if params, ok := req.Params.ByRelation[rel]; ok {
			builder.WalkWithParams(rel, params)
		} else {
			builder.Walk(rel)
		}
	}

	switch req.Method {
	case http.MethodPost:
		return builder.Post(ctx, req.Body)
	case http.MethodPut:
		return builder.Put(ctx, req.Body)
	case http.MethodPatch:
		return builder.Patch(ctx, req.Body)
	case http.MethodDelete:
		return builder.Delete(ctx)
	default:
		return builder.Get(ctx)
	}
}

// describeWalkError prefixes walk failures with the kind of failure.
func describeWalkError(err error) error {
	switch {
	case linkwalk.IsRelationNotFound(err):
		return fmt.Errorf("link not found: %w", err)
	case linkwalk.IsMalformedLink(err):
		return fmt.Errorf("bad link: %w", err)
	case linkwalk.IsTerminalAction(err):
		return fmt.Errorf("final request failed: %w", err)
	case linkwalk.IsTransport(err):
		return fmt.Errorf("request failed while walking: %w", err)
	default:
		return fmt.Errorf("walk failed: %w", err)
	}
}
