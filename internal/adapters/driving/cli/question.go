package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var questionJSON bool

var questionCmd = &cobra.Command{
	Use:         "question",
	Short:       "Browse generated questions",
	Annotations: map[string]string{needsApp: "true"},
}

var questionGetCmd = &cobra.Command{
	Use:   "get [question-id]",
	Short: "Show a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionGet,
}

var questionVersionsCmd = &cobra.Command{
	Use:   "versions [question-id]",
	Short: "Show a question's version history",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionVersions,
}

var questionSessionCmd = &cobra.Command{
	Use:   "session [session-id]",
	Short: "List the questions of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionSession,
}

var questionRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recent sessions and their questions",
	Args:  cobra.NoArgs,
	RunE:  runQuestionRecent,
}

func init() {
	questionCmd.PersistentFlags().BoolVar(&questionJSON, "json", false, "output as JSON")
	questionCmd.AddCommand(questionGetCmd)
	questionCmd.AddCommand(questionVersionsCmd)
	questionCmd.AddCommand(questionSessionCmd)
	questionCmd.AddCommand(questionRecentCmd)
	rootCmd.AddCommand(questionCmd)
}

func runQuestionGet(cmd *cobra.Command, args []string) error {
	if questionService == nil {
		return errors.New("question service not configured")
	}
	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	q, err := questionService.Get(cmd.Context(), owner, args[0])
	if err != nil {
		return commandError("failed to get question", err)
	}
	if questionJSON {
		return outputJSON(cmd, q)
	}

	cmd.Printf("ID:      %s\n", q.ID)
	cmd.Printf("Session: %s\n", q.SessionID)
	cmd.Printf("Source:  %s\n", q.SourceType)
	cmd.Printf("Type:    %s\n\n", q.QuestionType)
	printContent(cmd, &q.QuestionContent)
	return nil
}

func runQuestionVersions(cmd *cobra.Command, args []string) error {
	if questionService == nil {
		return errors.New("question service not configured")
	}
	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	versions, err := questionService.Versions(cmd.Context(), owner, args[0])
	if err != nil {
		return commandError("failed to list versions", err)
	}
	if questionJSON {
		return outputJSON(cmd, versions)
	}
	if len(versions) == 0 {
		cmd.Println("No versions yet. The question has never been refined.")
		return nil
	}

	for i := range versions {
		v := &versions[i]
		cmd.Printf("v%d  %s  %s\n", v.Version, v.CreatedAt.Format("2006-01-02 15:04"), v.Instruction)
		printContent(cmd, &v.Content)
		cmd.Println()
	}
	return nil
}

func runQuestionSession(cmd *cobra.Command, args []string) error {
	if questionService == nil {
		return errors.New("question service not configured")
	}
	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	questions, err := questionService.ListBySession(cmd.Context(), owner, args[0])
	if err != nil {
		return commandError("failed to list session", err)
	}
	if questionJSON {
		return outputJSON(cmd, questions)
	}
	printQuestions(cmd, questions)
	return nil
}

func runQuestionRecent(cmd *cobra.Command, _ []string) error {
	if questionService == nil {
		return errors.New("question service not configured")
	}
	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	summaries, err := questionService.Recent(cmd.Context(), owner)
	if err != nil {
		return commandError("failed to list recent questions", err)
	}
	if questionJSON {
		return outputJSON(cmd, summaries)
	}
	if len(summaries) == 0 {
		cmd.Println("No questions yet.")
		return nil
	}

	for i := range summaries {
		s := &summaries[i]
		cmd.Printf("Session %s (%s, %s) %s\n", s.SessionID, s.SourceType, s.QuestionType,
			s.CreatedAt.Format("2006-01-02 15:04"))
		for j := range s.Questions {
			cmd.Printf("  - %s  %s\n", s.Questions[j].ID, s.Questions[j].QuestionText)
		}
		cmd.Println()
	}
	return nil
}
