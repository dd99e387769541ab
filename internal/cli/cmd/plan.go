package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"facequiz/internal/model"
	"facequiz/internal/pipeline"
)

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "plan",
		Short:         "Show the analysis script and model endpoints without running them",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := pipeline.BuildPlan(optionsFrom(cmd))
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

// printPlan outputs the resolved plan.
func printPlan(w io.Writer, p pipeline.Plan) {
	fmt.Fprintln(w, "Analysis plan:")
	fmt.Fprintf(w, "- Backend:        %s\n", p.Backend)
	if p.Backend == model.BackendONNX {
		fmt.Fprintf(w, "- Model file:     %s\n", p.ONNXModel)
	} else {
		fmt.Fprintf(w, "- Model:          %s\n", p.Endpoints.Model)
		fmt.Fprintf(w, "- Metadata:       %s\n", p.Endpoints.Metadata)
		if p.Endpoints.Predict != "" {
			fmt.Fprintf(w, "- Predict:        %s\n", p.Endpoints.Predict)
		} else {
			fmt.Fprintln(w, "- Predict:        (from metadata.json predictUrl)")
		}
	}
	if p.Timeout > 0 {
		fmt.Fprintf(w, "- Timeout:        %s\n", p.Timeout)
	} else {
		fmt.Fprintln(w, "- Timeout:        none")
	}
	fmt.Fprintf(w, "- Stages:         %d (%s total)\n", len(p.Stages), p.Total)
	for i, st := range p.Stages {
		fmt.Fprintf(w, "  %d. %s %-28s %6s  %5.1f%% → %5.1f%%\n",
			i+1, st.Icon, st.Label, st.Duration, st.Window.Start, st.Window.End)
	}
}
