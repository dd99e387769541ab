package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"facequiz/internal/lotto"
)

// ballColors are indexed by lotto.Bucket.
var ballColors = []lipgloss.Color{"#FBC400", "#69C8F2", "#FF7272", "#AAAAAA", "#B0D840"}

func newLottoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lotto",
		Short:         "Draw lottery numbers (6 of 1-45)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("sets")
			seed, _ := cmd.Flags().GetUint64("seed")

			r := lotto.NewRand()
			if seed != 0 {
				r = rand.New(rand.NewPCG(seed, seed))
			}
			sets, err := lotto.Sets(r, n)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			printSets(cmd.OutOrStdout(), sets)
			return nil
		},
	}
	cmd.Flags().IntP("sets", "n", 1, "Number of sets to draw")
	cmd.Flags().Uint64("seed", 0, "Fixed seed for a repeatable draw (0 is random)")
	return cmd
}

func printSets(w io.Writer, sets [][]int) {
	for i, set := range sets {
		balls := make([]string, len(set))
		for j, n := range set {
			balls[j] = ball(n)
		}
		fmt.Fprintf(w, "%d세트  %s\n", i+1, strings.Join(balls, " "))
	}
}

func ball(n int) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ballColors[lotto.Bucket(n)]).
		Render(fmt.Sprintf("%02d", n))
}
