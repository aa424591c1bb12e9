// Package tools exposes the assistant operations as named, schema-described tools
// for a tool-calling language model.
package tools

// Tool names.
const (
	RetrieveUserData           = "retrieve_user_data"
	AnalyzeSpending            = "analyze_spending"
	GenerateFinancialAdvice    = "generate_financial_advice"
	PredictFutureSpending      = "predict_future_spending"
	RecordTransaction          = "record_transaction"
	GenerateTransactionReceipt = "generate_transaction_receipt"
)

type (
	// Declaration describes one tool in JSON-schema terms.
	Declaration struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Parameters  Schema `json:"parameters"`
	}

	Schema struct {
		Type       string              `json:"type"`
		Properties map[string]Property `json:"properties"`
		Required   []string            `json:"required,omitempty"`
	}

	Property struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
)

var (
	userIDProperty = Property{Type: "integer", Description: "The unique identifier of the user."}
	periodProperty = Property{Type: "string", Description: "Budget period label, e.g. \"May\". Defaults to the configured period."}
)

// Declarations lists every tool in a stable order.
func Declarations() []Declaration {
	return []Declaration{
		{
			Name:        RetrieveUserData,
			Description: "Retrieves a user's profile and the salary of their budget for a period.",
			Parameters: Schema{
				Type:       "object",
				Properties: map[string]Property{"user_id": userIDProperty, "period": periodProperty},
				Required:   []string{"user_id"},
			},
		},
		{
			Name:        AnalyzeSpending,
			Description: "Analyzes the user's spending over the last 3 months: total, monthly breakdown and most used payment methods.",
			Parameters: Schema{
				Type:       "object",
				Properties: map[string]Property{"user_id": userIDProperty},
				Required:   []string{"user_id"},
			},
		},
		{
			Name:        GenerateFinancialAdvice,
			Description: "Returns the user's budget (salary, expense limit, savings goal) and last month's spending for writing personalized advice.",
			Parameters: Schema{
				Type:       "object",
				Properties: map[string]Property{"user_id": userIDProperty, "period": periodProperty},
				Required:   []string{"user_id"},
			},
		},
		{
			Name:        PredictFutureSpending,
			Description: "Predicts next month's spending from the average of the last 3 months.",
			Parameters: Schema{
				Type:       "object",
				Properties: map[string]Property{"user_id": userIDProperty},
				Required:   []string{"user_id"},
			},
		},
		{
			Name:        RecordTransaction,
			Description: "Records a transaction described as 'User [ID] spent [Amount] ETB for [Purpose] via [Payment Method] today.'",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"user_input": {Type: "string", Description: "The transaction sentence."},
				},
				Required: []string{"user_input"},
			},
		},
		{
			Name:        GenerateTransactionReceipt,
			Description: "Generates a PDF receipt for a recorded transaction and returns its location.",
			Parameters: Schema{
				Type: "object",
				Properties: map[string]Property{
					"transaction_id": {Type: "integer", Description: "The unique identifier of the transaction."},
				},
				Required: []string{"transaction_id"},
			},
		},
	}
}
