package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the embedded
	// default or an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names. Templates use Go text/template syntax; the data
// passed to each is documented alongside the name.
const (
	// PromptDocumentSystem is the system turn for document question generation.
	PromptDocumentSystem = "document_system"

	// PromptDocumentUser is the user turn for document question generation.
	// Data: .Count, .QuestionType, .StudyText.
	PromptDocumentUser = "document_user"

	// PromptSimilarSystem is the system turn for similarity generation.
	// Data: .Difficulty.
	PromptSimilarSystem = "similar_system"

	// PromptSimilarUser is the text part of the user turn for similarity generation.
	// Data: .Count, .Instruction.
	PromptSimilarUser = "similar_user"

	// PromptRefineSystem is the system turn for the question editor.
	PromptRefineSystem = "refine_system"

	// PromptRefineUser is the user turn for the question editor.
	// Data: .Instruction, .Question (JSON text of the current question).
	PromptRefineUser = "refine_user"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its embedded default prompts.
	SetPromptStore(store PromptStore)
}
