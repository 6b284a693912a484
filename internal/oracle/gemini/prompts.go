package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/risk"
)

// classifyTextLimit bounds how much document text goes into classification.
const classifyTextLimit = 10000

const jsonOnly = "Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n"

func classifyPrompt(rawText string) string {
	if len(rawText) > classifyTextLimit {
		rawText = rawText[:classifyTextLimit]
	}
	return "You are a document classification expert for an Indian loan processing system.\n" +
		"Analyze the provided document text and determine:\n\n" +
		"1. document_type, one of:\n" +
		"   - bank_statement: monthly bank account statements\n" +
		"   - kyc: identity documents (Aadhaar, PAN, Passport)\n" +
		"   - income_proof: salary slips, ITR, Form 16\n" +
		"   - property_doc: property papers, registration documents\n" +
		"   - other: any other document type\n" +
		"2. quality_score (0-10): 10 perfect, 7-9 minor issues, 4-6 some sections unclear,\n" +
		"   1-3 significant portions unreadable, 0 unreadable.\n" +
		"3. is_readable: can the text be read and processed?\n" +
		"4. is_complete: does the document appear complete?\n" +
		"5. issues: list of specific problems, empty list if none.\n" +
		"6. can_proceed: true if quality_score >= 5, is_readable is true and\n" +
		"   document_type is bank_statement.\n\n" +
		"Output a single JSON object with exactly these keys:\n" +
		"document_type, quality_score, is_readable, is_complete, issues, can_proceed.\n\n" +
		jsonOnly + "\n" +
		"Document Text (first 10,000 characters):\n" + rawText
}

func extractPrompt(rawText string, tables []domain.Table) string {
	tablesJSON, err := json.Marshal(tables)
	if err != nil {
		tablesJSON = []byte("[]")
	}
	return "You are a financial document extraction expert for Indian bank statements.\n" +
		"Extract all relevant information from this bank statement.\n\n" +
		"Output a single JSON object with these fields:\n" +
		"- \"account_holder_name\": string\n" +
		"- \"bank_name\": string (e.g. \"HDFC Bank\", \"ICICI Bank\", \"SBI\")\n" +
		"- \"branch\": string or null\n" +
		"- \"account_number_masked\": all but the last 4 digits masked (e.g. \"XXXX1234\")\n" +
		"- \"account_type\": \"Savings\" or \"Current\"\n" +
		"- \"statement_period_start\": string, \"YYYY-MM-DD\"\n" +
		"- \"statement_period_end\": string, \"YYYY-MM-DD\"\n" +
		"- \"opening_balance\", \"closing_balance\", \"total_credits\", \"total_debits\": numbers\n" +
		"- \"transaction_count\": number of transactions found\n" +
		"- \"transactions\": array of objects, one per transaction, with\n" +
		"    \"date\" (\"YYYY-MM-DD\"), \"description\", \"amount\" (positive number),\n" +
		"    \"type\" (\"credit\" or \"debit\"), \"balance\" (running balance or null)\n\n" +
		"Extract EVERY transaction.\n\n" +
		jsonOnly + "\n" +
		"Bank Statement Text:\n" + rawText + "\n\n" +
		"Tables Extracted:\n" + string(tablesJSON)
}

func validatePrompt(in risk.Input) string {
	var rules strings.Builder
	for _, r := range in.Rules {
		fmt.Fprintf(&rules, "- %s (%s severity): %s, threshold %s\n", r.Name, r.Severity, r.Description, r.Limit)
	}

	return "You are a loan compliance and risk assessment expert for Indian banking (RBI guidelines).\n" +
		"Analyze the extracted bank statement data and provide a risk assessment.\n\n" +
		"Extracted Data:\n" + mustJSON(in.Data) + "\n\n" +
		"Monthly Summaries:\n" + mustJSON(in.Summaries) + "\n\n" +
		"Compliance Rules Applied:\n" + rules.String() + "\n" +
		"Compliance Check Results (already computed):\n" + mustJSON(in.Checks) + "\n\n" +
		"Output a single JSON object with these fields:\n" +
		"- \"risk_score\": integer 0-100 (0-30 low risk, 31-60 medium, 61-100 high)\n" +
		"- \"score_breakdown\": object with keys \"balance_stability\", \"income_regularity\",\n" +
		"  \"transaction_patterns\" (0-25 each, higher is better) and \"red_flags\" (zero or negative)\n" +
		"- \"issues\": list of compliance concern strings\n" +
		"- \"red_flags\": list of serious concern strings\n" +
		"- \"recommendation\": \"APPROVE\" (risk <= 30), \"REVIEW\" (31-60) or \"REJECT\" (> 60)\n" +
		"- \"recommendation_reason\": 1-2 sentence explanation\n\n" +
		jsonOnly
}

const transcribePrompt = "You are a PDF transcription engine for bank statements.\n\n" +
	"Task:\n" +
	"- Transcribe the full text of every page of the attached PDF, in reading order.\n" +
	"- Lift every table you find.\n\n" +
	"Output a single JSON object:\n" +
	"{\n" +
	"  \"pages\": [\"<text of page 1>\", \"<text of page 2>\", ...],\n" +
	"  \"tables\": [{\"page\": 1, \"headers\": [\"...\"], \"rows\": [[\"cell\", ...], ...]}]\n" +
	"}\n\n" +
	jsonOnly

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(b)
}
