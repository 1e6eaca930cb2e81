package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mv4digital/chuvinha/internal/domain"
	"github.com/mv4digital/chuvinha/internal/llm"
)

// ImportKind selects the target shape of a spreadsheet normalization.
type ImportKind string

const (
	ImportExpenses ImportKind = "despesas"
	ImportRevenue  ImportKind = "receitas"
)

// Valid reports whether k is a known import kind.
func (k ImportKind) Valid() bool {
	return k == ImportExpenses || k == ImportRevenue
}

// maxSampleRows caps both the sample sent to the model and the items
// accepted back, regardless of what the caller supplied or the model
// returned.
const maxSampleRows = 50

// ImportRequest is one import_suggest call.
type ImportRequest struct {
	Kind ImportKind        `json:"importKind"`
	Rows []json.RawMessage `json:"rows"`
}

// ExpenseDraft is one schema-validated expense row drafted by the model.
type ExpenseDraft struct {
	Kind          string          `json:"kind"`
	Name          string          `json:"name"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   string          `json:"expense_date"`
	Paid          *bool           `json:"paid,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// RevenueDraft is one schema-validated revenue row drafted by the model.
type RevenueDraft struct {
	Service       string          `json:"service"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	EntryDate     string          `json:"entry_date"`
	Paid          *bool           `json:"paid,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

// Suggestion is the validated outcome of a normalization.
type Suggestion struct {
	Items    []any    `json:"items"`
	Warnings []string `json:"warnings,omitempty"`
}

// ModelJSONError means the model's response was not parseable JSON. The raw
// output is carried for operator inspection and must never be coerced into a
// best-effort guess.
type ModelJSONError struct {
	Raw string
	Err error
}

func (e *ModelJSONError) Error() string { return "IA retornou JSON inválido" }
func (e *ModelJSONError) Unwrap() error { return e.Err }

// SuggestImport turns a bounded sample of tabular rows into record drafts
// via the generative provider, under strict output validation: the response
// must parse as JSON, every item must match the target schema exactly, and
// the 50-item cap is enforced here rather than trusted to the model.
func (a *Assistant) SuggestImport(ctx context.Context, req ImportRequest) (*Suggestion, error) {
	rows := req.Rows
	if len(rows) > maxSampleRows {
		rows = rows[:maxSampleRows]
	}

	sample, err := json.Marshal(map[string]any{
		"importKind": req.Kind,
		"rows":       rows,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sample: %w", err)
	}

	content, err := a.chat.Complete(ctx, []llm.Message{
		{Role: "system", Content: importSystemPrompt},
		{Role: "user", Content: string(sample)},
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeModelItems(content)
	if err != nil {
		return nil, err
	}

	suggestion := &Suggestion{Items: make([]any, 0, len(items))}
	for i, raw := range items {
		if len(suggestion.Items) >= maxSampleRows {
			suggestion.Warnings = append(suggestion.Warnings,
				fmt.Sprintf("amostra limitada a %d itens; %d descartado(s)", maxSampleRows, len(items)-i))
			break
		}
		item, err := decodeDraft(req.Kind, raw)
		if err != nil {
			suggestion.Warnings = append(suggestion.Warnings, fmt.Sprintf("item %d descartado: %v", i+1, err))
			continue
		}
		suggestion.Items = append(suggestion.Items, item)
	}
	return suggestion, nil
}

// decodeModelItems parses the model response strictly as JSON, accepting
// either {"items":[...]} or a bare array.
func decodeModelItems(content string) ([]json.RawMessage, error) {
	clean := llm.CleanJSON(content)

	var wrapped struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(clean), &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal([]byte(clean), &bare); err != nil {
		return nil, &ModelJSONError{Raw: content, Err: err}
	}
	return bare, nil
}

// decodeDraft decodes one item against the exact target schema for the
// import kind: unknown fields are rejected, required fields checked, and
// enumerations and date formats enforced.
func decodeDraft(kind ImportKind, raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	switch kind {
	case ImportExpenses:
		var d ExpenseDraft
		if err := dec.Decode(&d); err != nil {
			return nil, err
		}
		if !domain.ExpenseKind(d.Kind).Valid() {
			return nil, fmt.Errorf("kind inválido: %q", d.Kind)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("name ausente")
		}
		if err := validateISODate(d.ExpenseDate); err != nil {
			return nil, fmt.Errorf("expense_date: %w", err)
		}
		return d, nil
	case ImportRevenue:
		var d RevenueDraft
		if err := dec.Decode(&d); err != nil {
			return nil, err
		}
		if !domain.ServiceKey(d.Service).Valid() {
			return nil, fmt.Errorf("service inválido: %q", d.Service)
		}
		if d.Title == "" {
			return nil, fmt.Errorf("title ausente")
		}
		if err := validateISODate(d.EntryDate); err != nil {
			return nil, fmt.Errorf("entry_date: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("importKind inválido: %q", kind)
	}
}

func validateISODate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("data %q fora do formato YYYY-MM-DD", s)
	}
	return nil
}
