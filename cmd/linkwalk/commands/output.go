package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fivetwenty-io/linkwalk/internal/constants"
	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/olekukonko/tablewriter"
)

// WalkOutput is the JSON/YAML form of a walk result.
type WalkOutput struct {
	WalkID      string               `json:"walk_id"                yaml:"walk_id"`
	Status      int                  `json:"status,omitempty"       yaml:"status,omitempty"`
	URI         string               `json:"uri"                    yaml:"uri"`
	ContentType string               `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	Steps       []linkwalk.StepTrace `json:"steps"                  yaml:"steps"`
	Body        interface{}          `json:"body,omitempty"         yaml:"body,omitempty"`
}

func newWalkOutput(res *linkwalk.Result) WalkOutput {
	output := WalkOutput{
		WalkID: res.WalkID,
		Steps:  res.Steps,
	}

	if output.Steps == nil {
		output.Steps = []linkwalk.StepTrace{}
	}

	if res.Response != nil {
		output.Status = res.Response.StatusCode
		output.URI = res.Response.URI
		output.ContentType = res.Response.ContentType()
	}

	switch {
	case res.Response != nil && len(res.Response.Body) == 0:
	case res.Document != nil && res.Document.Value() != nil:
		output.Body = res.Document.Value()
	case res.Response != nil && len(res.Response.Body) > 0:
		output.Body = string(res.Response.Body)
	}

	return output
}

// renderResult writes a walk result in the requested format.
func renderResult(out io.Writer, res *linkwalk.Result, format string) error {
	output := newWalkOutput(res)

	switch format {
	case constants.FormatJSON:
		return encodeJSON(out, output)
	case constants.FormatYAML:
		return encodeYAML(out, normalizeNumbers(output))
	default:
		return renderResultTable(out, output)
	}
}

func renderResultTable(out io.Writer, output WalkOutput) error {
	if len(output.Steps) > 0 {
		steps := tablewriter.NewWriter(out)
		steps.Header("#", "Relation", "URI", "Embedded")

		for i, step := range output.Steps {
			embedded := ""
			if step.Embedded {
				embedded = constants.CheckMarkSymbol
			}

			_ = steps.Append([]string{
				strconv.Itoa(i + 1),
				step.Relation,
				truncate(step.URI, constants.StringTruncationLength),
				embedded,
			})
		}

		err := steps.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	summary := tablewriter.NewWriter(out)
	summary.Header("Property", "Value")
	_ = summary.Append([]string{"Walk ID", output.WalkID})
	_ = summary.Append([]string{"URI", output.URI})

	status := constants.NotAvailable
	if output.Status != 0 {
		status = strconv.Itoa(output.Status)
	}

	_ = summary.Append([]string{"Status", status})
	_ = summary.Append([]string{"Content-Type", formatConfigValue(output.ContentType)})

	err := summary.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if output.Body == nil {
		return nil
	}

	if text, ok := output.Body.(string); ok {
		_, err = fmt.Fprintln(out, text)
	} else {
		var data []byte

		data, err = json.MarshalIndent(output.Body, "", "  ")
		if err == nil {
			_, err = fmt.Fprintln(out, string(data))
		}
	}

	if err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}

	return nil
}

// normalizeNumbers converts json.Number values so YAML renders them as
// numbers rather than strings.
func normalizeNumbers(output WalkOutput) WalkOutput {
	output.Body = normalizeValue(output.Body)

	return output
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return v.String()
	case map[string]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, item := range v {
			normalized[key] = normalizeValue(item)
		}

		return normalized
	case []interface{}:
		normalized := make([]interface{}, len(v))
		for i, item := range v {
			normalized[i] = normalizeValue(item)
		}

		return normalized
	default:
		return v
	}
}
