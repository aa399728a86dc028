package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

var (
	generateQuantity    int
	generateType        string
	generateInstruction string
	generateDifficulty  string
	generateJSON        bool
)

var generateCmd = &cobra.Command{
	Use:         "generate",
	Short:       "Generate questions",
	Long:        `Generate quiz questions from a PDF or from an image of an existing question.`,
	Annotations: map[string]string{needsApp: "true"},
}

var generateDocumentCmd = &cobra.Command{
	Use:   "document [file.pdf]",
	Short: "Generate questions from a PDF",
	Long: `Extracts the text of a PDF, embeds it in chunks, retrieves the most
relevant passages and generates questions grounded in them.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerateDocument,
}

var generateSimilarCmd = &cobra.Command{
	Use:   "similar [image]",
	Short: "Generate questions similar to one in an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerateSimilar,
}

func init() {
	generateDocumentCmd.Flags().IntVarP(&generateQuantity, "quantity", "n", 0,
		fmt.Sprintf("number of questions (default %d)", domain.DefaultDocumentQuantity))
	generateDocumentCmd.Flags().StringVarP(&generateType, "type", "t", string(domain.QuestionMCQ), "question type: mcq or open")
	generateDocumentCmd.Flags().BoolVar(&generateJSON, "json", false, "output result as JSON")

	generateSimilarCmd.Flags().IntVarP(&generateQuantity, "quantity", "n", 0,
		fmt.Sprintf("number of questions (default %d)", domain.DefaultSimilarQuantity))
	generateSimilarCmd.Flags().StringVarP(&generateInstruction, "instruction", "i", "", "what the new questions should change")
	generateSimilarCmd.Flags().StringVarP(&generateDifficulty, "difficulty", "d", string(domain.DifficultyEasy),
		"difficulty: easy, medium or hard")
	generateSimilarCmd.Flags().BoolVar(&generateJSON, "json", false, "output result as JSON")
	_ = generateSimilarCmd.MarkFlagRequired("instruction")

	generateCmd.AddCommand(generateDocumentCmd)
	generateCmd.AddCommand(generateSimilarCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerateDocument(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document generation service not configured")
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := documentService.Generate(cmd.Context(), owner, domain.DocumentGenerateRequest{
		Filename:     filepath.Base(path),
		Data:         data,
		Quantity:     generateQuantity,
		QuestionType: domain.QuestionType(generateType),
	})
	if err != nil {
		return commandError("generation failed", err)
	}

	if generateJSON {
		return outputJSON(cmd, result)
	}

	cmd.Printf("Session:  %s\n", result.SessionID)
	cmd.Printf("Document: %s\n\n", result.DocumentID)
	printQuestions(cmd, result.Questions)
	return nil
}

func runGenerateSimilar(cmd *cobra.Command, args []string) error {
	if similarService == nil {
		return errors.New("similar generation service not configured")
	}

	owner, err := resolveOwner()
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := similarService.Generate(cmd.Context(), owner, domain.SimilarGenerateRequest{
		Image:       data,
		ImageMime:   http.DetectContentType(data),
		Instruction: generateInstruction,
		Quantity:    generateQuantity,
		Difficulty:  domain.Difficulty(generateDifficulty),
	})
	if err != nil {
		return commandError("generation failed", err)
	}

	if generateJSON {
		return outputJSON(cmd, result)
	}

	cmd.Printf("Session: %s\n\n", result.SessionID)
	printQuestions(cmd, result.Questions)
	return nil
}

// commandError prefixes err with its stable kind so scripts can match on it.
func commandError(action string, err error) error {
	return fmt.Errorf("%s [%s]: %w", action, domain.ErrorKind(err), err)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printQuestions(cmd *cobra.Command, questions []domain.Question) {
	if len(questions) == 0 {
		cmd.Println("No questions.")
		return
	}
	for i := range questions {
		cmd.Printf("[%d] %s\n", i+1, questions[i].ID)
		printContent(cmd, &questions[i].QuestionContent)
		cmd.Println()
	}
	cmd.Printf("Total: %d questions\n", len(questions))
}

func printContent(cmd *cobra.Command, c *domain.QuestionContent) {
	cmd.Printf("    %s\n", c.QuestionText)
	for _, key := range domain.OptionKeys {
		if opt, ok := c.Options[key]; ok {
			cmd.Printf("      %s) %s\n", key, opt)
		}
	}
	cmd.Printf("    Answer: %s\n", c.CorrectAnswer)
	if c.Explanation != "" {
		cmd.Printf("    Why: %s\n", strings.TrimSpace(c.Explanation))
	}
}
