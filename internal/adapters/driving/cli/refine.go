package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var refineJSON bool

var refineCmd = &cobra.Command{
	Use:   "refine [question-id] [instruction]",
	Short: "Refine a question with an instruction",
	Long: `Applies an instruction to the latest version of a question and stores
the result as a new version. The first refinement also records the original
question as version 1.`,
	Args:        cobra.MinimumNArgs(2),
	Annotations: map[string]string{needsApp: "true"},
	RunE:        runRefine,
}

func init() {
	refineCmd.Flags().BoolVar(&refineJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	if refinementService == nil {
		return errors.New("refinement service not configured")
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	instruction := strings.Join(args[1:], " ")
	result, err := refinementService.Refine(cmd.Context(), owner, args[0], instruction)
	if err != nil {
		return commandError("refinement failed", err)
	}

	if refineJSON {
		return outputJSON(cmd, result)
	}

	cmd.Printf("Question %s is now at version %d\n\n", result.QuestionID, result.Version)
	printContent(cmd, &result.Question)
	return nil
}
