package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/scoring"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdEvaluate() *cli.Command {
	var matrixPath string
	var tagsPath string
	var asJSON bool

	return &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"e"},
		Usage:   "Score a list of tags offline without touching storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "matrix",
				Usage:       "Path to a risk matrix JSON document (built-in default if omitted)",
				Sources:     cli.EnvVars("RISKMATRIX_MATRIX"),
				Destination: &matrixPath,
			},
			&cli.StringFlag{
				Name:        "tags",
				Usage:       "Path to a JSON array of tags ({indicatorId, severity})",
				Required:    true,
				Destination: &tagsPath,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the result as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			res, err := runEvaluate(matrixPath, tagsPath)
			if err != nil {
				return err
			}
			if asJSON {
				return writeEvaluationJSON(os.Stdout, res)
			}
			printEvaluation(os.Stdout, res)
			return nil
		},
	}
}

func runEvaluate(matrixPath, tagsPath string) (*scoring.Result, error) {
	m := model.DefaultRiskMatrix()
	if matrixPath != "" {
		loaded, err := loadMatrixFile(matrixPath)
		if err != nil {
			return nil, err
		}
		m = loaded
	}

	tags, err := loadTagsFile(tagsPath)
	if err != nil {
		return nil, err
	}

	return scoring.Evaluate(m, scoring.Aggregate(tags, m)), nil
}

func loadTagsFile(path string) ([]model.Tag, error) {
	// #nosec G304 -- path is given by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tags", goerr.V("path", path))
	}

	var tags []model.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, goerr.Wrap(err, "failed to parse tags", goerr.V("path", path))
	}
	return tags, nil
}

type evaluationOutput struct {
	FinalScore          float64             `json:"finalScore"`
	RawScore            float64             `json:"rawScore"`
	ProtectiveReduction float64             `json:"protectiveReduction"`
	TrafficLight        string              `json:"trafficLight"`
	Rationale           []string            `json:"rationale"`
	HardRuleHits        []model.HardRuleHit `json:"hardRuleHits"`
	DimensionsPresent   []string            `json:"dimensionsPresent"`
}

func writeEvaluationJSON(w io.Writer, res *scoring.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(evaluationOutput{
		FinalScore:          res.FinalScore,
		RawScore:            res.RawScore,
		ProtectiveReduction: res.ProtectiveReduction,
		TrafficLight:        res.TrafficLight.String(),
		Rationale:           res.Rationale,
		HardRuleHits:        res.HardRuleHits,
		DimensionsPresent:   res.DimensionsPresent,
	}); err != nil {
		return goerr.Wrap(err, "failed to encode evaluation")
	}
	return nil
}

func lightColor(l types.TrafficLight) *color.Color {
	switch l {
	case types.TrafficLightRed:
		return color.New(color.FgRed, color.Bold)
	case types.TrafficLightYellow:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func printEvaluation(w io.Writer, res *scoring.Result) {
	fmt.Fprintf(w, "%s  score %.1f (raw %.1f)\n", lightColor(res.TrafficLight).Sprint(res.TrafficLight), res.FinalScore, res.RawScore)
	for _, hit := range res.HardRuleHits {
		fmt.Fprintf(w, "  hard rule: %s (%s)\n", hit.Label, hit.IndicatorID)
	}
	if len(res.DimensionsPresent) > 0 {
		fmt.Fprintf(w, "  dimensions: %v\n", res.DimensionsPresent)
	}
	for _, line := range res.Rationale {
		fmt.Fprintf(w, "  - %s\n", line)
	}
}
